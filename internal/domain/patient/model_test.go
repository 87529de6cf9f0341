package patient

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(1990, time.June, 1)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"1990-06-01"` {
		t.Errorf("got %s", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != d {
		t.Errorf("round trip changed value: %v != %v", back, d)
	}
}

func TestDateUnmarshalRFC3339(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"1990-06-01T15:04:05Z"`), &d); err != nil {
		t.Fatal(err)
	}
	if d.String() != "1990-06-01" {
		t.Errorf("got %s, want day only", d)
	}
}

func TestDateUnmarshalInvalid(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"06/01/1990"`), &d); err == nil {
		t.Error("expected error for unknown layout")
	}
}

func TestDateUnmarshalEmpty(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`""`), &d); err != nil {
		t.Fatal(err)
	}
	if !d.IsZero() {
		t.Error("empty string should yield the zero date")
	}
}

func TestValidStatusEnum(t *testing.T) {
	for _, s := range Statuses {
		if !ValidStatus(s) {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []Status{"", "active", "INQUIRY", "Archived"} {
		if ValidStatus(s) {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestDisplayName(t *testing.T) {
	p := &Patient{FirstName: "Jane", LastName: "Doe"}
	if got := p.DisplayName(); got != "Jane Doe" {
		t.Errorf("got %q", got)
	}
	p.MiddleName = strptr("Q")
	if got := p.DisplayName(); got != "Jane Q Doe" {
		t.Errorf("got %q", got)
	}
}

func TestPayloadToPatient(t *testing.T) {
	payload := patientPayload{
		FirstName:   "Jane",
		MiddleName:  strptr(""),
		LastName:    "Doe",
		DateOfBirth: NewDate(1990, time.June, 1),
		Status:      StatusActive,
		Address:     "123 Main Street",
	}
	p := payload.toPatient()
	if p.MiddleName != nil {
		t.Error("empty middle name should map to nil")
	}
	if p.ProviderID != "" {
		t.Error("payload must never carry a provider id")
	}

	payload.MiddleName = strptr("Marie")
	p = payload.toPatient()
	if p.MiddleName == nil || *p.MiddleName != "Marie" {
		t.Error("middle name lost in mapping")
	}
}

func TestPatientJSONShape(t *testing.T) {
	p := &Patient{
		FirstName:     "Jane",
		LastName:      "Doe",
		DateOfBirth:   NewDate(1990, time.June, 1),
		Status:        StatusActive,
		Address:       "123 Main Street",
		ProviderID:    "provider-1",
		StatusHistory: []StatusUpdate{},
	}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"id", "firstName", "lastName", "dateOfBirth", "status", "address", "providerId", "statusHistory", "createdAt", "updatedAt"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if _, ok := m["middleName"]; ok {
		t.Error("nil middle name should be omitted")
	}
	if string(m["statusHistory"]) != "[]" {
		t.Errorf("statusHistory should serialize as [], got %s", m["statusHistory"])
	}
}
