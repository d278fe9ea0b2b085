package utils

import "math"

const (
	earthRadiusKm = 6371.0088

	// KmPerDegreeLat is the approximate length of one degree of latitude.
	KmPerDegreeLat = 111.0
	kmPerDegreeLon = 111.32

	minLonScale = 0.001
)

// BoundingBox is an axis-aligned lat/lon rectangle that contains a search circle.
// It over-approximates the circle and is only meant as a cheap pre-filter.
// MinLon > MaxLon means the box crosses the antimeridian.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether the point lies inside the box (inclusive).
func (b BoundingBox) Contains(lat, lon float64) bool {
	if lat < b.MinLat || lat > b.MaxLat {
		return false
	}
	if b.CrossesAntimeridian() {
		return lon >= b.MinLon || lon <= b.MaxLon
	}
	return lon >= b.MinLon && lon <= b.MaxLon
}

// CrossesAntimeridian reports whether the longitude range wraps past ±180.
func (b BoundingBox) CrossesAntimeridian() bool {
	return b.MinLon > b.MaxLon
}

// ValidCoordinate reports whether lat/lon are finite and within range.
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// DistanceKm returns the great-circle distance between two points in kilometers.
// Invalid coordinates yield +Inf.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	if !ValidCoordinate(lat1, lon1) || !ValidCoordinate(lat2, lon2) {
		return math.Inf(1)
	}

	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	a = math.Min(1, math.Max(0, a))

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DistanceToRow is DistanceKm for a stored row whose coordinates may be NULL.
func DistanceToRow(lat, lon float64, rowLat, rowLon *float64) float64 {
	if rowLat == nil || rowLon == nil {
		return math.Inf(1)
	}
	return DistanceKm(lat, lon, *rowLat, *rowLon)
}

// NewBoundingBox approximates the square around (lat, lon) covering radiusKm.
// The longitude span widens with latitude and is capped near the poles.
// Returns nil when the center or radius is unusable.
func NewBoundingBox(lat, lon, radiusKm float64) *BoundingBox {
	if !ValidCoordinate(lat, lon) || math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm <= 0 {
		return nil
	}

	latDelta := radiusKm / KmPerDegreeLat

	scale := kmPerDegreeLon * math.Cos(toRadians(lat))
	if scale < minLonScale {
		scale = minLonScale
	}
	lonDelta := radiusKm / scale

	minLon, maxLon := lon-lonDelta, lon+lonDelta
	switch {
	case lonDelta >= 180:
		minLon, maxLon = -180, 180
	case minLon < -180:
		minLon += 360
	case maxLon > 180:
		maxLon -= 360
	}

	return &BoundingBox{
		MinLat: lat - latDelta,
		MaxLat: lat + latDelta,
		MinLon: minLon,
		MaxLon: maxLon,
	}
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
