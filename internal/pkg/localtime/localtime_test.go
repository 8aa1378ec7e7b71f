package localtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayBounds(t *testing.T) {
	r := MustResolver("Asia/Jakarta") // UTC+7, no DST

	// 23:30 UTC is already 06:30 the next day in Jakarta.
	ref := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	start, end := r.DayBounds(ref)

	assert.Equal(t, time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 11, 17, 0, 0, 0, time.UTC), end)
	assert.Equal(t, "2025-03-11", r.DayKey(ref))
}

func TestDayBoundsContainReference(t *testing.T) {
	r := MustResolver("Europe/Istanbul")

	for _, hour := range []int{0, 5, 11, 16, 20, 23} {
		ref := time.Date(2025, 6, 1, hour, 0, 0, 0, time.UTC)
		start, end := r.DayBounds(ref)
		assert.False(t, ref.Before(start), "hour %d: ref before start", hour)
		assert.True(t, ref.Before(end), "hour %d: ref not before end", hour)
	}
}

func TestSameLocalDayAcrossUTCMidnight(t *testing.T) {
	r := MustResolver("Asia/Jakarta")

	// Both 22:00 UTC Mar 10 and 02:00 UTC Mar 11 are Mar 11 in Jakarta.
	a := time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)
	b := time.Date(2025, 3, 11, 2, 0, 0, 0, time.UTC)
	assert.True(t, r.SameLocalDay(a, b))

	c := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	assert.False(t, r.SameLocalDay(a, c))
}

func TestAtAndMinuteOfDay(t *testing.T) {
	r := MustResolver("Asia/Jakarta")

	ref := time.Date(2025, 3, 11, 1, 0, 0, 0, time.UTC) // Mar 11 local
	at := r.At(ref, 9*60)                               // 09:00 local
	assert.Equal(t, time.Date(2025, 3, 11, 2, 0, 0, 0, time.UTC), at)
	assert.Equal(t, 9*60, r.MinuteOfDay(at))
}

func TestNewResolverRejectsUnknownZone(t *testing.T) {
	_, err := NewResolver("Mars/Olympus_Mons")
	require.Error(t, err)
}
