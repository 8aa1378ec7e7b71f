package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/shift"
)

func TestFlagsRoundTrip(t *testing.T) {
	f := Flags{
		Version: FlagsVersion,
		Shift: &ShiftBinding{
			ShiftID:   "shift-1",
			ShiftName: "Morning",
			Source:    shift.SourceSchedulePlan,
		},
		Duplicate: &DuplicateMarker{AdjacentEventID: "ev-9"},
	}

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var got Flags
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, f.Shift, got.Shift)
	assert.Equal(t, f.Duplicate, got.Duplicate)
	assert.Nil(t, got.QR)
}

func TestFlagsPreserveUnknownKeys(t *testing.T) {
	stored := []byte(`{"v":1,"shift":{"shift_id":"s1","source":"REQUEST"},"legacy_marker":{"a":1},"note":"old"}`)

	var f Flags
	require.NoError(t, json.Unmarshal(stored, &f))
	require.Contains(t, f.Extra, "legacy_marker")
	require.Contains(t, f.Extra, "note")

	out, err := json.Marshal(f)
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Contains(t, m, "legacy_marker")
	assert.Contains(t, m, "note")
	assert.Contains(t, m, "shift")
}

func TestAutoCloseMarkerJSON(t *testing.T) {
	end := time.Date(2025, 3, 11, 18, 0, 0, 0, time.UTC)
	f := Flags{
		Version:   FlagsVersion,
		AutoClose: &AutoCloseMarker{Reason: AutoCloseReasonOvertime, OpenEventID: "ev-1", ShiftEnd: end},
	}

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var got Flags
	require.NoError(t, json.Unmarshal(data, &got))
	require.NotNil(t, got.AutoClose)
	assert.Equal(t, AutoCloseReasonOvertime, got.AutoClose.Reason)
	assert.True(t, end.Equal(got.AutoClose.ShiftEnd))
}
