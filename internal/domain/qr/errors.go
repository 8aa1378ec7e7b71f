package qr

import "github.com/tandang-dev/attendance-backend-go/internal/domain/fault"

var (
	ErrCodeNotFound          = fault.New("QR_CODE_NOT_FOUND", "QR code not found or inactive")
	ErrCodeHasNoActivePoints = fault.New("QR_CODE_HAS_NO_ACTIVE_POINTS", "QR code has no active anchor points")
	ErrPointOutOfRange       = fault.New("QR_POINT_OUT_OF_RANGE", "position is outside every anchor point radius")
	ErrDoubleScanBlocked     = fault.New("QR_DOUBLE_SCAN_BLOCKED", "a QR scan was already made moments ago")
)
