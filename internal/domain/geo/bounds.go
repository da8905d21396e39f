// Package geo holds the viewport bounding box computed over matched documents.
package geo

import (
	"errors"
	"math"
)

// earthRadiusMeters is the mean radius of Earth used for haversine distance.
const earthRadiusMeters = 6_371_000.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds is a bounding box in the geo_bounds convention: top-left and bottom-right corners.
type Bounds struct {
	TopLeft     Point `json:"top_left"`
	BottomRight Point `json:"bottom_right"`
}

// FromMinMax builds Bounds from per-axis extremes.
func FromMinMax(minLat, maxLat, minLon, maxLon float64) (Bounds, error) {
	if !ValidateCoordinates(minLat, minLon) || !ValidateCoordinates(maxLat, maxLon) {
		return Bounds{}, errors.New("coordinates out of range")
	}
	if minLat > maxLat {
		return Bounds{}, errors.New("min latitude exceeds max latitude")
	}
	return Bounds{
		TopLeft:     Point{Lat: maxLat, Lon: minLon},
		BottomRight: Point{Lat: minLat, Lon: maxLon},
	}, nil
}

// Center returns the midpoint of the box. A box whose left edge is east of its
// right edge crosses the antimeridian and is centered accordingly.
func (b Bounds) Center() Point {
	lat := (b.TopLeft.Lat + b.BottomRight.Lat) / 2
	left, right := b.TopLeft.Lon, b.BottomRight.Lon
	if left > right {
		right += 360
	}
	lon := (left + right) / 2
	if lon > 180 {
		lon -= 360
	}
	return Point{Lat: lat, Lon: lon}
}

// DiagonalMeters returns the great-circle length of the box diagonal.
func (b Bounds) DiagonalMeters() float64 {
	return haversine(b.TopLeft.Lat, b.TopLeft.Lon, b.BottomRight.Lat, b.BottomRight.Lon)
}

// haversine returns the great-circle distance in meters between two points
// specified by latitude and longitude in degrees.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
