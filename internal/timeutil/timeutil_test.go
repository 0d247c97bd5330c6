package timeutil

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocalShapes(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"8/12/2025, 10:15:32 PM", time.Date(2025, 8, 12, 22, 15, 32, 0, time.Local)},
		{"8/12/2025, 10:15 PM", time.Date(2025, 8, 12, 22, 15, 0, 0, time.Local)},
		{"2025-08-12T22:15:32", time.Date(2025, 8, 12, 22, 15, 32, 0, time.Local)},
		{"2025-08-12T22:15", time.Date(2025, 8, 12, 22, 15, 0, 0, time.Local)},
		{"  1/2/2025, 3:04:05 AM  ", time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local)},
	}
	for _, c := range cases {
		got, ok := ParseLocal(c.in)
		require.True(t, ok, "should parse %q", c.in)
		assert.True(t, got.Equal(c.want), "parsed %q as %v, want %v", c.in, got, c.want)
	}

	for _, bad := range []string{"", "not a date", "2025-13-01T00:00", "Pending"} {
		_, ok := ParseLocal(bad)
		assert.False(t, ok, "should not parse %q", bad)
	}
}

func TestLocaleStorageRoundTrip(t *testing.T) {
	locale := "8/12/2025, 10:15:32 PM"
	storage := ToStorageLocal(locale)
	assert.Equal(t, "2025-08-12T22:15:32", storage)
	assert.Equal(t, locale, ToLocale(storage))

	assert.Equal(t, "", ToStorageLocal("garbage"))
	assert.Equal(t, "", ToLocale(""))
}

func TestAcceptedPrefix(t *testing.T) {
	assert.Equal(t, "8/12/2025, 10:15:32 PM", StripAcceptedPrefix("Accepted on: 8/12/2025, 10:15:32 PM"))
	assert.Equal(t, "8/12/2025, 10:15:32 PM", StripAcceptedPrefix("accepted ON: 8/12/2025, 10:15:32 PM"))
	assert.Equal(t, "8/12/2025, 10:15:32 PM", StripAcceptedPrefix("8/12/2025, 10:15:32 PM"))
	assert.Equal(t, "", StripAcceptedPrefix(""))

	assert.Equal(t, "Accepted on: x", WithAcceptedPrefix("x"))
	assert.Equal(t, "", WithAcceptedPrefix(""))
}

func TestFormatDurationHM(t *testing.T) {
	start := time.Date(2025, 8, 12, 10, 0, 0, 0, time.Local)

	assert.Equal(t, "0 hours 45 minutes", FormatDurationHM(start, start.Add(45*time.Minute)))
	assert.Equal(t, "1 hour 1 minute", FormatDurationHM(start, start.Add(61*time.Minute)))
	assert.Equal(t, "2 hours 0 minutes", FormatDurationHM(start, start.Add(2*time.Hour)))
	// sub-minute remainder truncates
	assert.Equal(t, "0 hours 0 minutes", FormatDurationHM(start, start.Add(59*time.Second)))
	assert.Equal(t, "Pending", FormatDurationHM(start, start.Add(-time.Second)))
}

func TestFormatDurationHMS(t *testing.T) {
	start := time.Date(2025, 8, 12, 10, 0, 0, 0, time.Local)

	assert.Equal(t, "0 hours 45 minutes 30 seconds", FormatDurationHMS(start, start.Add(45*time.Minute+30*time.Second)))
	assert.Equal(t, "1 hour 0 minutes 1 second", FormatDurationHMS(start, start.Add(time.Hour+time.Second)))
	assert.Equal(t, "Pending", FormatDurationHMS(start.Add(time.Second), start))
}

func TestNormalizeStorageSeconds(t *testing.T) {
	assert.Equal(t, "2025-08-12T22:15:00", NormalizeStorageSeconds("2025-08-12T22:15"))
	assert.Equal(t, "2025-08-12T22:15:32", NormalizeStorageSeconds("2025-08-12T22:15:32"))
	assert.Equal(t, "2025-08-12T22:15:32", NormalizeStorageSeconds("2025-08-12T22:15:32.500"))
	assert.Equal(t, "", NormalizeStorageSeconds(""))
}

func TestJitterSeconds(t *testing.T) {
	// exact minute gets a random non-zero seconds component
	for i := 0; i < 20; i++ {
		out := JitterSeconds("2025-08-12T22:15:00")
		require.True(t, strings.HasPrefix(out, "2025-08-12T22:15:"), "minute must be preserved, got %q", out)
		parsed, ok := ParseLocal(out)
		require.True(t, ok)
		assert.NotZero(t, parsed.Second())
		assert.LessOrEqual(t, parsed.Second(), 59)
	}

	// non-zero seconds pass through unchanged
	assert.Equal(t, "2025-08-12T22:15:07", JitterSeconds("2025-08-12T22:15:07"))
	assert.Equal(t, "nonsense", JitterSeconds("nonsense"))
}

func TestNudgeDelivered(t *testing.T) {
	// delivered before accepted gets bumped to accepted + 1s
	a, d := NudgeDelivered("2025-08-12T10:00:30", "2025-08-12T09:59:00")
	assert.Equal(t, "2025-08-12T10:00:30", a)
	assert.Equal(t, "2025-08-12T10:00:31", d)

	// valid ordering passes through
	a, d = NudgeDelivered("2025-08-12T10:00:30", "2025-08-12T10:30:00")
	assert.Equal(t, "2025-08-12T10:30:00", d)

	// missing or unparseable sides untouched
	a, d = NudgeDelivered("", "2025-08-12T10:30:00")
	assert.Equal(t, "", a)
	assert.Equal(t, "2025-08-12T10:30:00", d)
	a, d = NudgeDelivered("junk", "2025-08-12T10:30:00")
	assert.Equal(t, "junk", a)
}
