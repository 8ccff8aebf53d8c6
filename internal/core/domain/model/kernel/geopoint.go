package kernel

import (
	"math"

	"snapeats/internal/pkg/errs"
	"snapeats/internal/pkg/guard"
)

// Geographic coordinate bounds in decimal degrees.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// ErrGeoPointIsNotConstructed indicates that a GeoPoint was not created through
// the NewGeoPoint constructor. The zero value of GeoPoint is invalid.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError("GeoPoint must be created via NewGeoPoint")

// GeoPoint is an immutable value object representing a geographic position
// as a latitude/longitude pair in decimal degrees.
//
// GeoPoint is used for the delivery address snapshot on an order and for
// rider position reports. Distance and routing computations are the
// responsibility of external collaborators; the domain only carries the
// coordinates through.
//
// Example usage:
//
//	point, err := kernel.NewGeoPoint(12.9716, 77.5946)
//	if err != nil {
//	    // coordinates out of range
//	}
type GeoPoint struct {
	latitude  float64
	longitude float64
	guard     guard.ConstructorGuard
}

// NewGeoPoint creates a validated GeoPoint.
//
// Returns a ValueIsOutOfRangeError when latitude is outside [-90, 90]
// or longitude is outside [-180, 180].
func NewGeoPoint(latitude, longitude float64) (GeoPoint, error) {
	// NaN compares false against every bound, so it needs its own check.
	if math.IsNaN(latitude) || latitude < MinLatitude || latitude > MaxLatitude {
		return GeoPoint{}, errs.NewValueIsOutOfRangeError("latitude", latitude, MinLatitude, MaxLatitude)
	}
	if math.IsNaN(longitude) || longitude < MinLongitude || longitude > MaxLongitude {
		return GeoPoint{}, errs.NewValueIsOutOfRangeError("longitude", longitude, MinLongitude, MaxLongitude)
	}

	return GeoPoint{
		latitude:  latitude,
		longitude: longitude,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the GeoPoint was created through NewGeoPoint.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Latitude returns the latitude in decimal degrees.
func (p GeoPoint) Latitude() float64 {
	return p.latitude
}

// Longitude returns the longitude in decimal degrees.
func (p GeoPoint) Longitude() float64 {
	return p.longitude
}

// IsEqual compares two points by exact coordinate equality.
func (p GeoPoint) IsEqual(other GeoPoint) bool {
	return p.latitude == other.latitude && p.longitude == other.longitude
}
