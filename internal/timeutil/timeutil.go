// Package timeutil converts between the three time string shapes the app
// uses: human-locale datetimes ("8/12/2025, 10:15:32 PM"), storage-local
// input strings ("2006-01-02T15:04:05"), and time.Time instants. All
// functions are total: invalid input yields an empty string or "Pending",
// never an error.
package timeutil

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// AcceptedPrefix is the literal marker prefixed to a stored accepted time.
const AcceptedPrefix = "Accepted on: "

// localeLayout matches JS Date.toLocaleString() in the en-US locale, which
// is how every timestamp in the document is displayed and stored.
const localeLayout = "1/2/2006, 3:04:05 PM"

// storageLayout is the datetime-local input control shape.
const storageLayout = "2006-01-02T15:04:05"

var parseLayouts = []string{
	localeLayout,
	"1/2/2006, 3:04 PM",
	storageLayout,
	"2006-01-02T15:04",
}

// ParseLocal parses a locale or storage-shaped datetime in local time.
// The second return is false when no layout matches.
func ParseLocal(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatLocale renders an instant in the locale shape.
func FormatLocale(t time.Time) string {
	return t.In(time.Local).Format(localeLayout)
}

// FormatStorage renders an instant in the zero-padded input-control shape.
func FormatStorage(t time.Time) string {
	return t.In(time.Local).Format(storageLayout)
}

// ToStorageLocal converts a locale datetime to the input-control shape.
// Unparseable input yields "".
func ToStorageLocal(localeStr string) string {
	t, ok := ParseLocal(localeStr)
	if !ok {
		return ""
	}
	return FormatStorage(t)
}

// ToLocale converts an input-control string back to the locale shape.
// Unparseable input yields "".
func ToLocale(inputVal string) string {
	t, ok := ParseLocal(inputVal)
	if !ok {
		return ""
	}
	return FormatLocale(t)
}

// StripAcceptedPrefix removes the "Accepted on: " marker, case-insensitively.
func StripAcceptedPrefix(text string) string {
	s := strings.TrimSpace(text)
	if len(s) >= len(AcceptedPrefix) && strings.EqualFold(s[:len(AcceptedPrefix)], AcceptedPrefix) {
		return strings.TrimSpace(s[len(AcceptedPrefix):])
	}
	return s
}

// WithAcceptedPrefix adds the marker. The prefix is never applied to an
// empty value.
func WithAcceptedPrefix(localeStr string) string {
	if localeStr == "" {
		return ""
	}
	return AcceptedPrefix + localeStr
}

// FormatDurationHM renders "N hour(s) M minute(s)". Returns "Pending" when
// end precedes start.
func FormatDurationHM(start, end time.Time) string {
	diff := end.Sub(start)
	if diff < 0 {
		return "Pending"
	}
	hrs := int(diff / time.Hour)
	mins := int(diff % time.Hour / time.Minute)
	return fmt.Sprintf("%d hour%s %d minute%s", hrs, plural(hrs), mins, plural(mins))
}

// FormatDurationHMS is the seconds-precision variant used where sub-minute
// precision matters.
func FormatDurationHMS(start, end time.Time) string {
	diff := end.Sub(start)
	if diff < 0 {
		return "Pending"
	}
	hrs := int(diff / time.Hour)
	mins := int(diff % time.Hour / time.Minute)
	secs := int(diff % time.Minute / time.Second)
	return fmt.Sprintf("%d hour%s %d minute%s %d second%s",
		hrs, plural(hrs), mins, plural(mins), secs, plural(secs))
}

func plural(n int) string {
	if n != 1 {
		return "s"
	}
	return ""
}

// NormalizeStorageSeconds ensures a storage string carries a seconds
// component: ":00" is appended when seconds are missing, fractional seconds
// are stripped.
func NormalizeStorageSeconds(val string) string {
	if val == "" {
		return ""
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", val, time.Local); err == nil {
		return FormatStorage(t)
	}
	if i := strings.IndexByte(val, '.'); i > 0 {
		val = val[:i]
	}
	return val
}

// JitterSeconds replaces a ":00" seconds component with a pseudo-random
// value in [1,59]. Manual entry on touch devices defaults seconds to zero,
// which collides across entries edited in bulk; the jitter keeps them
// distinguishable. Timestamps with non-zero seconds are never altered.
func JitterSeconds(val string) string {
	t, ok := ParseLocal(val)
	if !ok || t.Second() != 0 {
		return val
	}
	return FormatStorage(t.Add(time.Duration(rand.Intn(59)+1) * time.Second))
}

// NudgeDelivered enforces delivered >= accepted on a pair of storage
// strings: a violating delivered time is bumped to accepted + 1s instead of
// being rejected. Pairs with a missing or unparseable side pass through
// untouched.
func NudgeDelivered(accepted, delivered string) (string, string) {
	if accepted == "" || delivered == "" {
		return accepted, delivered
	}
	a, aok := ParseLocal(accepted)
	d, dok := ParseLocal(delivered)
	if !aok || !dok {
		return accepted, delivered
	}
	if d.Before(a) {
		return accepted, FormatStorage(a.Add(time.Second))
	}
	return accepted, delivered
}
