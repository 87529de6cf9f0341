package patient

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	nameMinLength    = 2
	nameMaxLength    = 50
	addressMinLength = 5
	addressMaxLength = 200

	// MaxAgeYears is the oldest date of birth accepted, counted back from today.
	MaxAgeYears = 120
)

// Names may contain letters, spaces, hyphens, and apostrophes.
var nameRegex = regexp.MustCompile(`^[\p{L} '-]+$`)

// ValidateName checks a single name field. The field label is interpolated
// into the message ("first name", "middle name", "last name"). An empty
// return value means the field is valid.
func ValidateName(name, field string) string {
	if strings.TrimSpace(name) == "" {
		return fmt.Sprintf("A %s is required", field)
	}
	if utf8.RuneCountInString(name) < nameMinLength {
		return fmt.Sprintf("A %s must be at least %d characters", field, nameMinLength)
	}
	if utf8.RuneCountInString(name) > nameMaxLength {
		return fmt.Sprintf("A %s must be less than %d characters", field, nameMaxLength)
	}
	if !nameRegex.MatchString(name) {
		return fmt.Sprintf("A %s can only contain letters, spaces, hyphens, and apostrophes", field)
	}
	return ""
}

// ValidateAddress checks the free-text address field.
func ValidateAddress(address string) string {
	if strings.TrimSpace(address) == "" {
		return "An address is required"
	}
	if utf8.RuneCountInString(address) < addressMinLength {
		return fmt.Sprintf("An address must be at least %d characters", addressMinLength)
	}
	if utf8.RuneCountInString(address) > addressMaxLength {
		return fmt.Sprintf("An address must be less than %d characters", addressMaxLength)
	}
	return ""
}

// ValidateDateOfBirth checks that the date exists, is not in the future, and
// is no more than MaxAgeYears before today. The boundary day exactly
// MaxAgeYears ago is accepted.
func ValidateDateOfBirth(date Date, now time.Time) string {
	if date.IsZero() {
		return "Date of birth is required"
	}
	today := DateOf(now)
	if date.After(today) {
		return "Date of birth cannot be in the future"
	}
	if date.Before(today.AddDate(-MaxAgeYears, 0, 0)) {
		return "Date of birth seems invalid"
	}
	return ""
}

// ValidateStatus checks for presence and enum membership. The original form
// only checked blankness; membership is enforced here so that arbitrary
// strings never reach the status history.
func ValidateStatus(status Status) string {
	if status == "" {
		return "Status is required"
	}
	if !ValidStatus(status) {
		return fmt.Sprintf("Status must be one of %s, %s, %s, %s",
			StatusInquiry, StatusOnboarding, StatusActive, StatusChurned)
	}
	return ""
}

// formFields is the fixed validation order shared by both modes.
var formFields = []struct {
	name  string
	check func(p *Patient, now time.Time) string
}{
	{"firstName", func(p *Patient, _ time.Time) string { return ValidateName(p.FirstName, "first name") }},
	{"middleName", func(p *Patient, _ time.Time) string {
		if p.MiddleName == nil || *p.MiddleName == "" {
			return ""
		}
		return ValidateName(*p.MiddleName, "middle name")
	}},
	{"lastName", func(p *Patient, _ time.Time) string { return ValidateName(p.LastName, "last name") }},
	{"dateOfBirth", func(p *Patient, now time.Time) string { return ValidateDateOfBirth(p.DateOfBirth, now) }},
	{"address", func(p *Patient, _ time.Time) string { return ValidateAddress(p.Address) }},
	{"status", func(p *Patient, _ time.Time) string { return ValidateStatus(p.Status) }},
}

// ValidateForm runs every field check and returns a field→message map. Valid
// fields are absent from the map. This exhaustive mode backs field-level
// feedback; Create and Update use FirstError instead.
func ValidateForm(p *Patient, now time.Time) map[string]string {
	errs := make(map[string]string)
	for _, f := range formFields {
		if msg := f.check(p, now); msg != "" {
			errs[f.name] = msg
		}
	}
	return errs
}

// IsFormValid reports whether the error map contains no messages.
func IsFormValid(errs map[string]string) bool {
	for _, msg := range errs {
		if msg != "" {
			return false
		}
	}
	return true
}

// FirstError runs the same checks as ValidateForm in the same fixed order
// and returns the first failure, or empty when the record is valid.
func FirstError(p *Patient, now time.Time) string {
	for _, f := range formFields {
		if msg := f.check(p, now); msg != "" {
			return msg
		}
	}
	return ""
}
