package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Semester is a study semester between MinSemester and MaxSemester.
// It is compared numerically, so ordering never depends on the textual form.
type Semester int

const (
	MinSemester Semester = 1
	MaxSemester Semester = 8
)

// ParseSemester converts the textual form ("3") into a Semester, rejecting out-of-range values.
func ParseSemester(raw string) (Semester, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("semester %q is not a number", raw)
	}
	semester := Semester(value)
	if !semester.Valid() {
		return 0, fmt.Errorf("semester %d out of range %d..%d", value, MinSemester, MaxSemester)
	}
	return semester, nil
}

// Valid reports whether the semester lies within the supported range.
func (s Semester) Valid() bool {
	return s >= MinSemester && s <= MaxSemester
}

func (s Semester) String() string {
	return strconv.Itoa(int(s))
}

// MarshalJSON writes the semester as a numeric string.
func (s Semester) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts both "3" and 3.
func (s *Semester) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		var number int
		if numErr := json.Unmarshal(data, &number); numErr != nil {
			return fmt.Errorf("semester must be a string or integer: %w", err)
		}
		text = strconv.Itoa(number)
	}
	parsed, err := ParseSemester(text)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// AudienceAll targets every semester.
const AudienceAll Audience = "all"

// Audience is the target of a notification: "all" or a single semester.
type Audience string

// ParseAudience accepts "all" (any case) or a valid semester.
func ParseAudience(raw string) (Audience, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, string(AudienceAll)) {
		return AudienceAll, nil
	}
	semester, err := ParseSemester(trimmed)
	if err != nil {
		return "", fmt.Errorf("audience: %w", err)
	}
	return AudienceForSemester(semester), nil
}

// AudienceForSemester targets exactly one semester.
func AudienceForSemester(s Semester) Audience {
	return Audience(s.String())
}

// Includes reports whether a viewer at the given semester is targeted.
func (a Audience) Includes(s Semester) bool {
	return a == AudienceAll || a == AudienceForSemester(s)
}

// UnmarshalJSON rejects audiences that are neither "all" nor a valid semester.
func (a *Audience) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("audience must be a string: %w", err)
	}
	parsed, err := ParseAudience(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// DateLayout is the calendar-date wire format.
const DateLayout = "2006-01-02"

// Date is a calendar day without time of day, always normalised to UTC midnight.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in t's location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses "2006-01-02", tolerating a full RFC 3339 timestamp.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return NewDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", raw)
	}
	return NewDate(t), nil
}

// AddDays shifts the date by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON writes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON reads the date from a string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
