package patient

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the patient's position in the care funnel.
type Status string

const (
	StatusInquiry    Status = "Inquiry"
	StatusOnboarding Status = "Onboarding"
	StatusActive     Status = "Active"
	StatusChurned    Status = "Churned"
)

// Statuses lists the valid status values in funnel order.
var Statuses = []Status{StatusInquiry, StatusOnboarding, StatusActive, StatusChurned}

// ValidStatus reports whether s is one of the four known statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusInquiry, StatusOnboarding, StatusActive, StatusChurned:
		return true
	}
	return false
}

// Date is a calendar date without a time component. It marshals as
// YYYY-MM-DD and accepts RFC 3339 timestamps on input, keeping only the day.
type Date struct {
	t time.Time
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	return Date{t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) IsZero() bool       { return d.t.IsZero() }
func (d Date) Time() time.Time    { return d.t }
func (d Date) String() string     { return d.t.Format("2006-01-02") }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// AddDate mirrors time.Time.AddDate.
func (d Date) AddDate(years, months, days int) Date {
	return Date{t: d.t.AddDate(years, months, days)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			*d = DateOf(t)
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

// Patient is the application-facing record shape. Field names follow the
// wire contract (camelCase); the storage row shape is snake_case and the
// repository maps between the two.
type Patient struct {
	ID            uuid.UUID      `json:"id"`
	FirstName     string         `json:"firstName"`
	MiddleName    *string        `json:"middleName,omitempty"`
	LastName      string         `json:"lastName"`
	DateOfBirth   Date           `json:"dateOfBirth"`
	Status        Status         `json:"status"`
	Address       string         `json:"address"`
	ProviderID    string         `json:"providerId"`
	StatusHistory []StatusUpdate `json:"statusHistory"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// StatusUpdate is one immutable entry in a patient's status history.
// Entries are only ever appended, or bulk-deleted with their patient.
type StatusUpdate struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patientId"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// DisplayName joins the patient's name parts for logs and messages.
func (p *Patient) DisplayName() string {
	parts := []string{p.FirstName}
	if p.MiddleName != nil && *p.MiddleName != "" {
		parts = append(parts, *p.MiddleName)
	}
	parts = append(parts, p.LastName)
	return strings.Join(parts, " ")
}
