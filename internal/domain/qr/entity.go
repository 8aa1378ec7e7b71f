package qr

import "time"

// CodeType fixes or toggles the scan direction.
type CodeType string

const (
	TypeCheckin  CodeType = "CHECKIN"
	TypeCheckout CodeType = "CHECKOUT"
	// TypeBoth toggles IN/OUT based on the employee's open-shift state.
	TypeBoth CodeType = "BOTH"
)

// Code is a scannable attendance QR code.
type Code struct {
	ID        string
	Value     string
	Type      CodeType
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Point is a geographic anchor a code is valid at.
type Point struct {
	ID           string
	CodeID       string
	Name         string
	Latitude     float64
	Longitude    float64
	RadiusMeters int
	Active       bool
	CreatedAt    time.Time
}
