package patient

import (
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

func strptr(s string) *string { return &s }

func validPatient() *Patient {
	return &Patient{
		FirstName:   "Jane",
		LastName:    "Doe",
		DateOfBirth: NewDate(1990, time.June, 1),
		Status:      StatusActive,
		Address:     "123 Main Street, Springfield",
	}
}

func TestValidateName(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"valid", "Jane", ""},
		{"valid with hyphen", "Mary-Jane", ""},
		{"valid with apostrophe", "O'Brien", ""},
		{"valid with space", "Ana Maria", ""},
		{"valid accented", "José", ""},
		{"empty", "", "A first name is required"},
		{"whitespace only", "   ", "A first name is required"},
		{"too short", "J", "A first name must be at least 2 characters"},
		{"too long", strings.Repeat("a", 51), "A first name must be less than 50 characters"},
		{"max length ok", strings.Repeat("a", 50), ""},
		{"digits", "Jane2", "A first name can only contain letters, spaces, hyphens, and apostrophes"},
		{"symbols", "Jane!", "A first name can only contain letters, spaces, hyphens, and apostrophes"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateName(tc.input, "first name"); got != tc.want {
				t.Errorf("ValidateName(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestValidateNameFieldLabel(t *testing.T) {
	if got := ValidateName("", "last name"); got != "A last name is required" {
		t.Errorf("got %q", got)
	}
	if got := ValidateName("x", "middle name"); got != "A middle name must be at least 2 characters" {
		t.Errorf("got %q", got)
	}
}

func TestValidateAddress(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"valid", "123 Main Street", ""},
		{"empty", "", "An address is required"},
		{"whitespace only", "  ", "An address is required"},
		{"too short", "1 St", "An address must be at least 5 characters"},
		{"min length ok", "5 Elm.", ""},
		{"too long", strings.Repeat("a", 201), "An address must be less than 200 characters"},
		{"max length ok", strings.Repeat("a", 200), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateAddress(tc.input); got != tc.want {
				t.Errorf("ValidateAddress(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestValidateDateOfBirth(t *testing.T) {
	today := DateOf(testNow)
	cases := []struct {
		name string
		date Date
		want string
	}{
		{"valid", NewDate(1990, time.June, 1), ""},
		{"today", today, ""},
		{"zero", Date{}, "Date of birth is required"},
		{"tomorrow", today.AddDate(0, 0, 1), "Date of birth cannot be in the future"},
		{"boundary 120 years", today.AddDate(-MaxAgeYears, 0, 0), ""},
		{"older than 120 years", today.AddDate(-MaxAgeYears, 0, -1), "Date of birth seems invalid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateDateOfBirth(tc.date, testNow); got != tc.want {
				t.Errorf("ValidateDateOfBirth(%v) = %q, want %q", tc.date, got, tc.want)
			}
		})
	}
}

func TestValidateStatus(t *testing.T) {
	for _, s := range Statuses {
		if got := ValidateStatus(s); got != "" {
			t.Errorf("ValidateStatus(%q) = %q, want valid", s, got)
		}
	}
	if got := ValidateStatus(""); got != "Status is required" {
		t.Errorf("got %q", got)
	}
	want := "Status must be one of Inquiry, Onboarding, Active, Churned"
	if got := ValidateStatus("Archived"); got != want {
		t.Errorf("ValidateStatus(Archived) = %q, want %q", got, want)
	}
}

func TestValidateFormValid(t *testing.T) {
	errs := ValidateForm(validPatient(), testNow)
	if len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
	if !IsFormValid(errs) {
		t.Error("IsFormValid = false for empty map")
	}
}

func TestValidateFormCollectsAllErrors(t *testing.T) {
	p := &Patient{MiddleName: strptr("x")}
	errs := ValidateForm(p, testNow)

	want := map[string]string{
		"firstName":   "A first name is required",
		"middleName":  "A middle name must be at least 2 characters",
		"lastName":    "A last name is required",
		"dateOfBirth": "Date of birth is required",
		"address":     "An address is required",
		"status":      "Status is required",
	}
	for field, msg := range want {
		if errs[field] != msg {
			t.Errorf("errs[%q] = %q, want %q", field, errs[field], msg)
		}
	}
	if IsFormValid(errs) {
		t.Error("IsFormValid = true for invalid form")
	}
}

func TestValidateFormMiddleNameOptional(t *testing.T) {
	p := validPatient()
	p.MiddleName = nil
	if errs := ValidateForm(p, testNow); len(errs) != 0 {
		t.Errorf("nil middle name should be valid, got %v", errs)
	}

	p.MiddleName = strptr("")
	if errs := ValidateForm(p, testNow); len(errs) != 0 {
		t.Errorf("empty middle name should be valid, got %v", errs)
	}

	p.MiddleName = strptr("Q1")
	errs := ValidateForm(p, testNow)
	if errs["middleName"] == "" {
		t.Error("invalid middle name should produce an error")
	}
}

func TestFirstErrorOrder(t *testing.T) {
	// Everything invalid: first name wins.
	p := &Patient{}
	if got := FirstError(p, testNow); got != "A first name is required" {
		t.Errorf("got %q", got)
	}

	// Fix fields one at a time and watch the error walk the fixed order.
	p.FirstName = "Jane"
	if got := FirstError(p, testNow); got != "A last name is required" {
		t.Errorf("got %q", got)
	}
	p.LastName = "Doe"
	if got := FirstError(p, testNow); got != "Date of birth is required" {
		t.Errorf("got %q", got)
	}
	p.DateOfBirth = NewDate(1990, time.June, 1)
	if got := FirstError(p, testNow); got != "An address is required" {
		t.Errorf("got %q", got)
	}
	p.Address = "123 Main Street"
	if got := FirstError(p, testNow); got != "Status is required" {
		t.Errorf("got %q", got)
	}
	p.Status = StatusInquiry
	if got := FirstError(p, testNow); got != "" {
		t.Errorf("expected valid, got %q", got)
	}
}

func TestFirstErrorMiddleNameBeforeLastName(t *testing.T) {
	p := validPatient()
	p.MiddleName = strptr("!")
	p.LastName = ""
	want := "A middle name can only contain letters, spaces, hyphens, and apostrophes"
	if got := FirstError(p, testNow); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
