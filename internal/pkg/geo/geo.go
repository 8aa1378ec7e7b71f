package geo

import "math"

const earthRadiusMeters = 6371000

// HaversineDistance menghitung jarak antara dua titik koordinat dalam Meter.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	// Konversi ke Radian
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	// Rumus Haversine
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Status classifies a reported position against a reference point.
type Status string

const (
	StatusVerified   Status = "VERIFIED_HOME"
	StatusUnverified Status = "UNVERIFIED_LOCATION"
	StatusNoLocation Status = "NO_LOCATION"
)

// Point is a reference anchor (employee home point or QR anchor) with an
// acceptance radius.
type Point struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters int
}

// Verification carries the classification plus the detail the caller records
// in event flags.
type Verification struct {
	Status         Status
	DistanceMeters *float64
	RadiusMeters   *int
	Reason         string
}

// Verify classifies a reported (lat, lon) against ref:
// missing coordinates yield NO_LOCATION, a missing reference point yields
// UNVERIFIED_LOCATION, otherwise the haversine distance against the radius
// decides.
func Verify(ref *Point, lat, lon *float64) Verification {
	if lat == nil || lon == nil {
		return Verification{Status: StatusNoLocation, Reason: "missing_coordinates"}
	}
	if ref == nil {
		return Verification{Status: StatusUnverified, Reason: "no_reference_point"}
	}

	distance := HaversineDistance(ref.Latitude, ref.Longitude, *lat, *lon)
	radius := ref.RadiusMeters

	v := Verification{DistanceMeters: &distance, RadiusMeters: &radius}
	if distance <= float64(radius) {
		v.Status = StatusVerified
	} else {
		v.Status = StatusUnverified
	}
	return v
}
