package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistanceZero(t *testing.T) {
	assert.Equal(t, 0.0, HaversineDistance(41.0, 29.0, 41.0, 29.0))
}

func TestHaversineDistanceOneDegreeAtEquator(t *testing.T) {
	// One degree of longitude at the equator is ~111.2 km.
	d := HaversineDistance(0, 0, 0, 1)
	assert.InDelta(t, 111195, d, 300)
}

func TestVerifyMissingCoordinates(t *testing.T) {
	ref := &Point{Latitude: 41.0, Longitude: 29.0, RadiusMeters: 100}

	v := Verify(ref, nil, nil)
	assert.Equal(t, StatusNoLocation, v.Status)
	assert.Equal(t, "missing_coordinates", v.Reason)
	assert.Nil(t, v.DistanceMeters)
}

func TestVerifyNoReferencePoint(t *testing.T) {
	lat, lon := 41.0, 29.0

	v := Verify(nil, &lat, &lon)
	assert.Equal(t, StatusUnverified, v.Status)
	assert.Equal(t, "no_reference_point", v.Reason)
}

func TestVerifyInsideAndOutsideRadius(t *testing.T) {
	ref := &Point{Latitude: 0, Longitude: 0, RadiusMeters: 150}

	lat, lon := 0.001, 0.0 // ~111 m north
	v := Verify(ref, &lat, &lon)
	assert.Equal(t, StatusVerified, v.Status)
	assert.NotNil(t, v.DistanceMeters)
	assert.Equal(t, 150, *v.RadiusMeters)

	lon = 0.01 // well outside
	v = Verify(ref, &lat, &lon)
	assert.Equal(t, StatusUnverified, v.Status)
	assert.Greater(t, *v.DistanceMeters, 150.0)
}
