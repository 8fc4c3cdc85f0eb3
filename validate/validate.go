// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package validate

import (
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/voter-desk/models"
)

const (
	DateLayout  = "2006-01-02"
	MinVoterAge = 18
	OTPLength   = 6
)

var (
	voterIDPattern = regexp.MustCompile(`^[A-Z]{3}[0-9]{7}$`)
	aadhaarPattern = regexp.MustCompile(`^[0-9]{12}$`)
	phonePattern   = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	otpPattern     = regexp.MustCompile(`^[0-9]{6}$`)
)

// Field messages, keyed by validation tag
var messages = map[string]string{
	"required":  "This field is required",
	"voterid":   "Voter ID must be 3 letters followed by 7 digits (e.g. ABC1234567)",
	"aadhaar":   "Aadhaar number must be exactly 12 digits",
	"phone":     "Phone number must be 10 digits starting with 6-9",
	"birthdate": "Date of birth must be a past date in YYYY-MM-DD format",
	"adult":     "Voter must be at least 18 years old",
}

// FieldErrors maps a JSON field name to a human-readable message
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type detailsForm struct {
	VoterID      string `json:"voter_id" validate:"required,voterid"`
	AadharNumber string `json:"aadhar_number" validate:"required,aadhaar"`
	PhoneNumber  string `json:"phone_number" validate:"required,phone"`
	FullName     string `json:"full_name" validate:"required"`
	DateOfBirth  string `json:"date_of_birth" validate:"required,birthdate"`
}

type voterForm struct {
	VoterID        string `json:"voter_id" validate:"required,voterid"`
	AadharNumber   string `json:"aadhar_number" validate:"required,aadhaar"`
	PhoneNumber    string `json:"phone_number" validate:"required,phone"`
	FullName       string `json:"full_name" validate:"required"`
	DateOfBirth    string `json:"date_of_birth" validate:"required,birthdate,adult"`
	Address        string `json:"address" validate:"required"`
	Constituency   string `json:"constituency" validate:"required"`
	PollingStation string `json:"polling_station" validate:"required"`
}

type boothForm struct {
	BoothNumber  string `json:"booth_number" validate:"required"`
	BoothName    string `json:"booth_name" validate:"required"`
	Constituency string `json:"constituency" validate:"required"`
	Address      string `json:"address" validate:"required"`
}

// Validator wraps a configured validator.Validate. The clock is injectable
// so the birth-date rules are deterministic in tests.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

func New() *Validator {
	return NewWithClock(time.Now)
}

func NewWithClock(now func() time.Time) *Validator {
	val := &Validator{
		v:   validator.New(validator.WithRequiredStructEnabled()),
		now: now,
	}

	val.v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	val.v.RegisterValidation("voterid", matches(voterIDPattern))
	val.v.RegisterValidation("aadhaar", matches(aadhaarPattern))
	val.v.RegisterValidation("phone", matches(phonePattern))
	val.v.RegisterValidation("birthdate", func(fl validator.FieldLevel) bool {
		dob, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil && !dob.After(val.now())
	})
	val.v.RegisterValidation("adult", func(fl validator.FieldLevel) bool {
		return Age(fl.Field().String(), val.now()) >= MinVoterAge
	})

	return val
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// NormalizeDetails trims every field and upper-cases the voter ID
func NormalizeDetails(d models.VoterDetails) models.VoterDetails {
	return models.VoterDetails{
		VoterID:      strings.ToUpper(strings.TrimSpace(d.VoterID)),
		AadharNumber: strings.TrimSpace(d.AadharNumber),
		PhoneNumber:  strings.TrimSpace(d.PhoneNumber),
		FullName:     strings.TrimSpace(d.FullName),
		DateOfBirth:  strings.TrimSpace(d.DateOfBirth),
	}
}

// Details checks the five identity fields of the wizard's first step.
// Returns nil when everything is valid.
func (val *Validator) Details(d models.VoterDetails) FieldErrors {
	return val.check(detailsForm{
		VoterID:      d.VoterID,
		AadharNumber: d.AadharNumber,
		PhoneNumber:  d.PhoneNumber,
		FullName:     d.FullName,
		DateOfBirth:  d.DateOfBirth,
	})
}

// Voter checks a new-voter submission from the admin console
func (val *Validator) Voter(v models.Voter) FieldErrors {
	return val.check(voterForm{
		VoterID:        v.VoterID,
		AadharNumber:   v.AadharNumber,
		PhoneNumber:    v.PhoneNumber,
		FullName:       v.FullName,
		DateOfBirth:    v.DateOfBirth,
		Address:        v.Address,
		Constituency:   v.Constituency,
		PollingStation: v.PollingStation,
	})
}

func (val *Validator) Booth(b models.Booth) FieldErrors {
	return val.check(boothForm{
		BoothNumber:  b.BoothNumber,
		BoothName:    b.BoothName,
		Constituency: b.Constituency,
		Address:      b.Address,
	})
}

func (val *Validator) check(form any) FieldErrors {
	err := val.v.Struct(form)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"form": err.Error()}
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		msg, ok := messages[fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		out[field] = msg
	}
	return out
}

// OTP reports whether code is exactly six digits
func OTP(code string) bool {
	return otpPattern.MatchString(code)
}

// Age returns whole years between a YYYY-MM-DD birth date and now,
// or 0 when the date does not parse
func Age(dob string, now time.Time) int {
	birth, err := time.Parse(DateLayout, dob)
	if err != nil {
		return 0
	}

	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
