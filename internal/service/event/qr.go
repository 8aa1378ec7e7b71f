package event

import (
	"context"
	"fmt"
	"math"

	"github.com/tandang-dev/attendance-backend-go/internal/domain/event"
	"github.com/tandang-dev/attendance-backend-go/internal/domain/qr"
	"github.com/tandang-dev/attendance-backend-go/internal/pkg/geo"
)

// QRScan implements event.Engine. A scan resolves the code, picks the
// in-range anchor point closest to the reported position and dispatches to
// check-in or check-out; a BOTH code toggles on the derived open state.
func (e *EngineImpl) QRScan(ctx context.Context, req event.QRScanRequest) (event.Event, error) {
	now := e.cfg.Now().UTC()

	emp, err := e.activeEmployee(ctx, req.EmployeeID)
	if err != nil {
		return event.Event{}, err
	}
	if err := e.requireClaimedDevice(ctx, req.DeviceID, emp.ID); err != nil {
		return event.Event{}, err
	}

	// Cool-down applies regardless of direction or code type.
	lastScan, err := e.eventRepo.LatestQRScanAt(ctx, emp.ID)
	if err != nil {
		return event.Event{}, fmt.Errorf("latest qr scan: %w", err)
	}
	if lastScan != nil && now.Sub(*lastScan) < e.cfg.QRScanCooldown {
		return event.Event{}, qr.ErrDoubleScanBlocked
	}

	code, err := e.qrRepo.GetActiveByValue(ctx, req.CodeValue)
	if err != nil {
		return event.Event{}, fmt.Errorf("resolve qr code: %w", err)
	}
	if code == nil {
		return event.Event{}, qr.ErrCodeNotFound
	}

	points, err := e.qrRepo.ListActivePoints(ctx, code.ID)
	if err != nil {
		return event.Event{}, fmt.Errorf("list qr points: %w", err)
	}
	if len(points) == 0 {
		return event.Event{}, qr.ErrCodeHasNoActivePoints
	}

	if req.Latitude == nil || req.Longitude == nil {
		return event.Event{}, qr.ErrPointOutOfRange.WithDetail("reason", "missing_coordinates")
	}

	match, closest := matchPoint(points, *req.Latitude, *req.Longitude)
	if match == nil {
		// Denial carries the single closest out-of-range distance so the
		// client can tell the user how far off they are.
		return event.Event{}, qr.ErrPointOutOfRange.
			WithDetail("closest_distance_m", math.Round(closest.distance)).
			WithDetail("radius_m", closest.point.RadiusMeters)
	}

	verification := geo.Verification{
		Status:         geo.StatusVerified,
		DistanceMeters: &match.distance,
		RadiusMeters:   &match.point.RadiusMeters,
	}
	qrMatch := &event.QRMatch{
		CodeID:         code.ID,
		PointID:        match.point.ID,
		DistanceMeters: match.distance,
		RadiusMeters:   match.point.RadiusMeters,
	}
	opts := checkInOpts{verification: &verification, qrMatch: qrMatch}

	direction := code.Type
	if direction == qr.TypeBoth {
		open, err := e.openEvent(ctx, emp.ID, now)
		if err != nil {
			return event.Event{}, err
		}
		if open != nil {
			direction = qr.TypeCheckout
		} else {
			direction = qr.TypeCheckin
		}
	}

	if direction == qr.TypeCheckout {
		return e.performCheckOut(ctx, event.CheckOutRequest{
			EmployeeID: req.EmployeeID,
			DeviceID:   req.DeviceID,
			Latitude:   req.Latitude,
			Longitude:  req.Longitude,
		}, opts)
	}
	return e.performCheckIn(ctx, event.CheckInRequest{
		EmployeeID: req.EmployeeID,
		DeviceID:   req.DeviceID,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
	}, opts)
}

type pointMatch struct {
	point    qr.Point
	distance float64
}

// matchPoint returns the in-range point with minimum distance, or nil plus
// the closest out-of-range candidate.
func matchPoint(points []qr.Point, lat, lon float64) (*pointMatch, pointMatch) {
	var best *pointMatch
	var closest pointMatch
	for _, p := range points {
		d := geo.HaversineDistance(p.Latitude, p.Longitude, lat, lon)
		if closest.point.ID == "" || d < closest.distance {
			closest = pointMatch{point: p, distance: d}
		}
		if d <= float64(p.RadiusMeters) && (best == nil || d < best.distance) {
			best = &pointMatch{point: p, distance: d}
		}
	}
	return best, closest
}
