package event

import (
	"encoding/json"
	"time"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/shift"
)

// FlagsVersion is written into newly created flag bags.
const FlagsVersion = 1

// ShiftBinding records which shift an event was bound to and by which rule.
type ShiftBinding struct {
	ShiftID        string              `json:"shift_id"`
	ShiftName      string              `json:"shift_name,omitempty"`
	Source         shift.BindingSource `json:"source"`
	NeedsReview    bool                `json:"needs_review,omitempty"`
	PlanID         *string             `json:"plan_id,omitempty"`
	PlanOverridden bool                `json:"plan_overridden,omitempty"`
}

// QRMatch records the anchor point a QR scan resolved to.
type QRMatch struct {
	CodeID         string  `json:"code_id"`
	PointID        string  `json:"point_id"`
	DistanceMeters float64 `json:"distance_m"`
	RadiusMeters   int     `json:"radius_m"`
}

// DuplicateMarker flags an adjacent same-type event on the same local day.
// Duplicates are surfaced for human review, never blocked for organic events.
type DuplicateMarker struct {
	AdjacentEventID string `json:"adjacent_event_id"`
}

// ManualMarker records admin authorship of a manual create/edit.
type ManualMarker struct {
	AdminID            string     `json:"admin_id"`
	SequenceOverridden bool       `json:"sequence_overridden,omitempty"`
	EditedAt           *time.Time `json:"edited_at,omitempty"`
}

// LocationDetail carries the verifier's measurement.
type LocationDetail struct {
	DistanceMeters *float64 `json:"distance_m,omitempty"`
	RadiusMeters   *int     `json:"radius_m,omitempty"`
	Reason         string   `json:"reason,omitempty"`
}

// AutoCloseMarker flags a system-synthesized checkout.
type AutoCloseMarker struct {
	Reason      string    `json:"reason"`
	OpenEventID string    `json:"open_event_id"`
	ShiftEnd    time.Time `json:"shift_end"`
}

// AutoCloseReasonOvertime is the reason written by the overtime auto-close rule.
const AutoCloseReasonOvertime = "AUTO_OVERTIME_CLOSE"

// Flags is the structured, versioned annotation record attached to an
// event: one sub-record per concern instead of an untyped map. Keys written
// by older builds that this build does not model are preserved across a
// load/store round trip in Extra.
type Flags struct {
	Version   int
	Shift     *ShiftBinding
	QR        *QRMatch
	Duplicate *DuplicateMarker
	Manual    *ManualMarker
	Location  *LocationDetail
	AutoClose *AutoCloseMarker

	// Extra holds unknown keys found in stored data.
	Extra map[string]json.RawMessage
}

var knownFlagKeys = map[string]struct{}{
	"v": {}, "shift": {}, "qr": {}, "duplicate": {},
	"manual": {}, "location": {}, "auto_close": {},
}

type flagsWire struct {
	Version   int              `json:"v,omitempty"`
	Shift     *ShiftBinding    `json:"shift,omitempty"`
	QR        *QRMatch         `json:"qr,omitempty"`
	Duplicate *DuplicateMarker `json:"duplicate,omitempty"`
	Manual    *ManualMarker    `json:"manual,omitempty"`
	Location  *LocationDetail  `json:"location,omitempty"`
	AutoClose *AutoCloseMarker `json:"auto_close,omitempty"`
}

func (f Flags) MarshalJSON() ([]byte, error) {
	wire, err := json.Marshal(flagsWire{
		Version:   f.Version,
		Shift:     f.Shift,
		QR:        f.QR,
		Duplicate: f.Duplicate,
		Manual:    f.Manual,
		Location:  f.Location,
		AutoClose: f.AutoClose,
	})
	if err != nil || len(f.Extra) == 0 {
		return wire, err
	}

	merged := make(map[string]json.RawMessage, len(f.Extra)+7)
	if err := json.Unmarshal(wire, &merged); err != nil {
		return nil, err
	}
	for k, v := range f.Extra {
		if _, known := knownFlagKeys[k]; known {
			continue
		}
		merged[k] = v
	}
	return json.Marshal(merged)
}

func (f *Flags) UnmarshalJSON(data []byte) error {
	var wire flagsWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*f = Flags{
		Version:   wire.Version,
		Shift:     wire.Shift,
		QR:        wire.QR,
		Duplicate: wire.Duplicate,
		Manual:    wire.Manual,
		Location:  wire.Location,
		AutoClose: wire.AutoClose,
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if _, known := knownFlagKeys[k]; known {
			continue
		}
		if f.Extra == nil {
			f.Extra = make(map[string]json.RawMessage)
		}
		f.Extra[k] = v
	}
	return nil
}
