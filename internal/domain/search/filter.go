package search

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/patientdesk/patientdesk/internal/domain/patient"
)

// Filter is the structured form of a natural-language query as returned by
// the language model. Every field is optional; the model omits what the
// query does not mention.
type Filter struct {
	FirstName     *string
	MiddleName    *string
	LastName      *string
	Location      *Location
	AgeRange      *AgeRange
	HasMiddleName *bool
	Status        *string

	// StatusUpdatedAt is accepted from the model but not compiled into a
	// predicate yet.
	StatusUpdatedAt *DateRange
}

// Location carries whichever address fragments the model extracted. The
// model may also return a bare string, which lands in Address.
type Location struct {
	City              *string
	State             *string
	StateAbbreviation *string
	ZipCode           *string
	Address           *string
}

func (l *Location) fragments() []string {
	var frags []string
	for _, f := range []*string{l.City, l.State, l.StateAbbreviation, l.ZipCode, l.Address} {
		if f != nil && *f != "" {
			frags = append(frags, *f)
		}
	}
	return frags
}

// AgeRange is an inclusive age interval in whole years.
type AgeRange struct {
	StartAge int
	EndAge   int
}

type DateRange struct {
	Start string
	End   string
}

// ParseFilter turns the model's raw response into a Filter. The response is
// untrusted: markdown fences are stripped, and every field is coerced
// against its expected type, dropping anything that does not fit rather
// than failing the whole parse.
func ParseFilter(raw string) (*Filter, error) {
	cleaned := stripFences(raw)

	var loose map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &loose); err != nil {
		return nil, err
	}

	f := &Filter{
		FirstName:     coerceString(loose["firstName"]),
		MiddleName:    coerceString(loose["middleName"]),
		LastName:      coerceString(loose["lastName"]),
		Location:      coerceLocation(loose["location"]),
		AgeRange:      coerceAgeRange(loose["ageRange"]),
		HasMiddleName: coerceBool(loose["hasMiddleName"]),
		Status:        coerceString(loose["status"]),
	}
	if dr := coerceDateRange(loose["statusUpdatedAt"]); dr != nil {
		f.StatusUpdatedAt = dr
	}
	return f, nil
}

// stripFences removes markdown code-fence wrapping the model sometimes adds
// despite being told not to.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func coerceString(v interface{}) *string {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func coerceBool(v interface{}) *bool {
	b, ok := v.(bool)
	if !ok {
		return nil
	}
	return &b
}

// coerceInt accepts JSON numbers and numeric strings.
func coerceInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// coerceLocation accepts either a bare string or an object of fragments.
func coerceLocation(v interface{}) *Location {
	switch loc := v.(type) {
	case string:
		if loc == "" {
			return nil
		}
		return &Location{Address: &loc}
	case map[string]interface{}:
		l := &Location{
			City:              coerceString(loc["city"]),
			State:             coerceString(loc["state"]),
			StateAbbreviation: coerceString(loc["stateAbbreviation"]),
			ZipCode:           coerceString(loc["zipCode"]),
			Address:           coerceString(loc["address"]),
		}
		if len(l.fragments()) == 0 {
			return nil
		}
		return l
	}
	return nil
}

func coerceAgeRange(v interface{}) *AgeRange {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	start, okStart := coerceInt(obj["startAge"])
	end, okEnd := coerceInt(obj["endAge"])
	if !okStart || !okEnd || start < 0 || end < start {
		return nil
	}
	return &AgeRange{StartAge: start, EndAge: end}
}

func coerceDateRange(v interface{}) *DateRange {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	var dr DateRange
	if s := coerceString(obj["start"]); s != nil {
		dr.Start = *s
	}
	if e := coerceString(obj["end"]); e != nil {
		dr.End = *e
	}
	if dr.Start == "" && dr.End == "" {
		return nil
	}
	return &dr
}

// Criteria compiles the filter into storage predicates. The age range maps
// to an inclusive date-of-birth interval relative to today: the earliest
// acceptable birth date is today minus (endAge+1) years plus one day, the
// latest is today minus startAge years.
func (f *Filter) Criteria(today patient.Date) patient.Criteria {
	c := patient.Criteria{
		FirstName:  f.FirstName,
		MiddleName: f.MiddleName,
		LastName:   f.LastName,
	}
	if f.Location != nil {
		c.Locations = f.Location.fragments()
	}
	if f.HasMiddleName != nil {
		c.HasMiddleName = f.HasMiddleName
	}
	if f.Status != nil {
		s := patient.Status(*f.Status)
		if patient.ValidStatus(s) {
			c.Status = &s
		}
	}
	if f.AgeRange != nil {
		earliest := today.AddDate(-(f.AgeRange.EndAge + 1), 0, 1)
		latest := today.AddDate(-f.AgeRange.StartAge, 0, 0)
		c.BornAfter = &earliest
		c.BornBefore = &latest
	}
	return c
}
