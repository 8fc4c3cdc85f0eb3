// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/voter-desk/models"
)

var fixedNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func validDetails() models.VoterDetails {
	return models.VoterDetails{
		VoterID:      "ABC1234567",
		AadharNumber: "123456789012",
		PhoneNumber:  "9876543210",
		FullName:     "Asha Rao",
		DateOfBirth:  "1990-04-01",
	}
}

func TestDetails(t *testing.T) {
	v := NewWithClock(func() time.Time { return fixedNow })

	tests := []struct {
		name      string
		mutate    func(*models.VoterDetails)
		wantField string
	}{
		{"valid", func(d *models.VoterDetails) {}, ""},
		{"missing voter id", func(d *models.VoterDetails) { d.VoterID = "" }, "voter_id"},
		{"lowercase voter id", func(d *models.VoterDetails) { d.VoterID = "abc1234567" }, "voter_id"},
		{"short voter id", func(d *models.VoterDetails) { d.VoterID = "AB1234567" }, "voter_id"},
		{"aadhaar 11 digits", func(d *models.VoterDetails) { d.AadharNumber = "12345678901" }, "aadhar_number"},
		{"aadhaar letters", func(d *models.VoterDetails) { d.AadharNumber = "12345678901a" }, "aadhar_number"},
		{"phone starts with 5", func(d *models.VoterDetails) { d.PhoneNumber = "5876543210" }, "phone_number"},
		{"phone too long", func(d *models.VoterDetails) { d.PhoneNumber = "98765432101" }, "phone_number"},
		{"missing name", func(d *models.VoterDetails) { d.FullName = "" }, "full_name"},
		{"bad date", func(d *models.VoterDetails) { d.DateOfBirth = "01/04/1990" }, "date_of_birth"},
		{"future date", func(d *models.VoterDetails) { d.DateOfBirth = "2030-01-01" }, "date_of_birth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDetails()
			tt.mutate(&d)
			errs := v.Details(d)

			if tt.wantField == "" {
				if errs != nil {
					t.Fatalf("expected no errors, got %v", errs)
				}
				return
			}
			if _, ok := errs[tt.wantField]; !ok {
				t.Errorf("expected error on %s, got %v", tt.wantField, errs)
			}
			if len(errs) != 1 {
				t.Errorf("expected exactly one flagged field, got %v", errs)
			}
		})
	}
}

func TestDetails_AllMissing(t *testing.T) {
	errs := New().Details(models.VoterDetails{})
	for _, field := range []string{"voter_id", "aadhar_number", "phone_number", "full_name", "date_of_birth"} {
		if errs[field] != messages["required"] {
			t.Errorf("%s: got %q, want required message", field, errs[field])
		}
	}
}

func TestNormalizeDetails(t *testing.T) {
	d := NormalizeDetails(models.VoterDetails{
		VoterID:  "  abc1234567 ",
		FullName: " Asha Rao ",
	})
	if d.VoterID != "ABC1234567" {
		t.Errorf("VoterID = %q", d.VoterID)
	}
	if d.FullName != "Asha Rao" {
		t.Errorf("FullName = %q", d.FullName)
	}
}

func TestVoter(t *testing.T) {
	v := NewWithClock(func() time.Time { return fixedNow })

	voter := models.Voter{
		VoterID:        "ABC1234567",
		AadharNumber:   "123456789012",
		PhoneNumber:    "9876543210",
		FullName:       "Asha Rao",
		DateOfBirth:    "1990-04-01",
		Address:        "610/1119, Keshav Nagar, Delhi",
		Constituency:   "Delhi East",
		PollingStation: "Govt School Booth 1",
	}
	if errs := v.Voter(voter); errs != nil {
		t.Fatalf("expected valid voter, got %v", errs)
	}

	minor := voter
	minor.DateOfBirth = "2010-01-01"
	errs := v.Voter(minor)
	if errs["date_of_birth"] != messages["adult"] {
		t.Errorf("expected adult error, got %v", errs)
	}

	noStation := voter
	noStation.PollingStation = ""
	if _, ok := v.Voter(noStation)["polling_station"]; !ok {
		t.Error("expected polling_station to be required")
	}
}

func TestBooth(t *testing.T) {
	errs := New().Booth(models.Booth{BoothNumber: "1", BoothName: "School"})
	if len(errs) != 2 {
		t.Errorf("expected constituency and address errors, got %v", errs)
	}
}

func TestOTP(t *testing.T) {
	tests := map[string]bool{
		"123456":  true,
		"000000":  true,
		"12345":   false,
		"1234567": false,
		"12a456":  false,
		"":        false,
	}
	for code, want := range tests {
		if got := OTP(code); got != want {
			t.Errorf("OTP(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestAge(t *testing.T) {
	tests := []struct {
		dob  string
		want int
	}{
		{"1990-06-15", 35},
		{"1990-06-16", 34},
		{"2007-06-15", 18},
		{"2007-06-16", 17},
		{"not-a-date", 0},
		{"2030-01-01", 0},
	}
	for _, tt := range tests {
		if got := Age(tt.dob, fixedNow); got != tt.want {
			t.Errorf("Age(%q) = %d, want %d", tt.dob, got, tt.want)
		}
	}
}

func TestFieldErrors_Error(t *testing.T) {
	err := FieldErrors{"phone_number": "bad", "aadhar_number": "bad"}
	msg := err.Error()
	if !strings.HasPrefix(msg, "validation failed: aadhar_number") {
		t.Errorf("expected sorted fields, got %q", msg)
	}
}
