package event

import "time"

// CheckInRequest is an organic device check-in.
type CheckInRequest struct {
	EmployeeID       string
	DeviceID         string
	Latitude         *float64
	Longitude        *float64
	AccuracyMeters   *float64
	RequestedShiftID *string
	Note             *string
}

// CheckOutRequest is an organic device check-out. The shift is inherited
// from the matching open check-in.
type CheckOutRequest struct {
	EmployeeID     string
	DeviceID       string
	Latitude       *float64
	Longitude      *float64
	AccuracyMeters *float64
	Note           *string
}

// QRScanRequest resolves a QR code value and toggles or fixes direction by
// code type.
type QRScanRequest struct {
	EmployeeID string
	DeviceID   string
	CodeValue  string
	Latitude   *float64
	Longitude  *float64
}

// ManualCreateRequest is an admin-authored event. Sequence conflicts are
// hard rejections unless Override is set.
type ManualCreateRequest struct {
	AdminID    string
	EmployeeID string
	Type       Type
	Timestamp  time.Time
	Note       *string
	Override   bool
}

// ManualUpdateRequest edits an existing event in place.
type ManualUpdateRequest struct {
	AdminID   string
	EventID   string
	Timestamp *time.Time
	Type      *Type
	Note      *string
	Override  bool
}

// EventResponse is the API shape of a stored event.
type EventResponse struct {
	ID             string           `json:"id"`
	EmployeeID     string           `json:"employee_id"`
	DeviceID       *string          `json:"device_id,omitempty"`
	Type           Type             `json:"type"`
	Timestamp      time.Time        `json:"timestamp"`
	Latitude       *float64         `json:"latitude,omitempty"`
	Longitude      *float64         `json:"longitude,omitempty"`
	AccuracyMeters *float64         `json:"accuracy_meters,omitempty"`
	LocationStatus LocationStatus   `json:"location_status"`
	Source         Source           `json:"source"`
	ByAdmin        bool             `json:"by_admin,omitempty"`
	Note           *string          `json:"note,omitempty"`
	Shift          *ShiftBinding    `json:"shift,omitempty"`
	QR             *QRMatch         `json:"qr,omitempty"`
	Duplicate      *DuplicateMarker `json:"duplicate,omitempty"`
	Location       *LocationDetail  `json:"location,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func NewEventResponse(e Event) EventResponse {
	return EventResponse{
		ID:             e.ID,
		EmployeeID:     e.EmployeeID,
		DeviceID:       e.DeviceID,
		Type:           e.Type,
		Timestamp:      e.Timestamp,
		Latitude:       e.Latitude,
		Longitude:      e.Longitude,
		AccuracyMeters: e.AccuracyMeters,
		LocationStatus: e.LocationStatus,
		Source:         e.Source,
		ByAdmin:        e.ByAdmin,
		Note:           e.Note,
		Shift:          e.Flags.Shift,
		QR:             e.Flags.QR,
		Duplicate:      e.Flags.Duplicate,
		Location:       e.Flags.Location,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

// Status describes the employee's derived attendance state.
type Status struct {
	Open        bool       `json:"open"`
	OpenEventID *string    `json:"open_event_id,omitempty"`
	LastEventAt *time.Time `json:"last_event_at,omitempty"`
	CyclesToday int        `json:"cycles_today"`
	LocalDay    string     `json:"local_day"`
}
