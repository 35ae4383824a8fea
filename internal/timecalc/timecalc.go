// Package timecalc converts between H:MM strings and minutes since midnight.
//
// Hours are never zero-padded and never wrap at 24h: a value of 1500 minutes
// renders as "25:00". Shift lengths are offsets, not wall-clock times.
package timecalc

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultDayStart is the running clock origin when a day carries no start marker.
const DefaultDayStart = "8:00"

var (
	hmPattern  = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	hmsPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2}):\d{2}$`)
	numPattern = regexp.MustCompile(`^\d+(?:[.,]\d+)?$`)
)

// MalformedTimeError is returned when a value is not an H:MM string.
type MalformedTimeError struct {
	Value string
}

func (e *MalformedTimeError) Error() string {
	return fmt.Sprintf("invalid time format: %q (expected H:MM)", e.Value)
}

// ToMinutes parses an H:MM string.
func ToMinutes(s string) (int, error) {
	m := hmPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, &MalformedTimeError{Value: s}
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	return h*60 + min, nil
}

// FromMinutes renders minutes as H:MM.
func FromMinutes(total int) string {
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}
	return fmt.Sprintf("%s%d:%02d", sign, total/60, total%60)
}

// IsValid reports whether s parses as H:MM.
func IsValid(s string) bool {
	_, err := ToMinutes(s)
	return err == nil
}

// Add returns start + duration as H:MM.
func Add(start, duration string) (string, error) {
	s, err := ToMinutes(start)
	if err != nil {
		return "", err
	}
	d, err := ToMinutes(duration)
	if err != nil {
		return "", err
	}
	return FromMinutes(s + d), nil
}

// Hour returns the hour component of an H:MM value.
func Hour(s string) (int, error) {
	m, err := ToMinutes(s)
	if err != nil {
		return 0, err
	}
	return m / 60, nil
}

// NormalizeDuration converts the duration dialects found in time tracker
// exports to H:MM:
//
//	"01:30:00" -> "1:30"
//	"1.5", "1,5" -> "1:30"
//	"2" -> "2:00"
//
// Already normalized values and anything unrecognized are returned trimmed
// but otherwise unchanged.
func NormalizeDuration(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}

	if m := hmsPattern.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%d:%s", h, m[2])
	}

	if strings.Contains(s, ":") || !numPattern.MatchString(s) {
		return s
	}

	hours, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return s
	}
	return FromMinutes(int(math.Round(hours * 60)))
}
