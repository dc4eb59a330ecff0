package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// DefaultPoint is used when a station location cannot be parsed.
var DefaultPoint = Point{Lat: 52.0, Lon: 10.0}

// pointRe matches WKT points such as "POINT(13.4021 52.4675)". The POINT( )
// wrapper is optional so bare "lon lat" pairs also parse.
var pointRe = regexp.MustCompile(`^\s*(?:POINT\s*\(\s*)?(-?\d+(?:\.\d+)?)\s+(-?\d+(?:\.\d+)?)\s*\)?\s*$`)

// Point is a WGS-84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// WKT encodes the point as "POINT(lon lat)".
func (p Point) WKT() string {
	return fmt.Sprintf("POINT(%s %s)",
		strconv.FormatFloat(p.Lon, 'f', -1, 64),
		strconv.FormatFloat(p.Lat, 'f', -1, 64))
}

// ParsePoint decodes a WKT point. Longitude comes first.
func ParsePoint(s string) (Point, error) {
	m := pointRe.FindStringSubmatch(s)
	if m == nil {
		return Point{}, fmt.Errorf("parse point %q: %w", s, errMalformedPoint)
	}
	lon, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Point{}, fmt.Errorf("parse point %q: %w", s, err)
	}
	lat, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Point{}, fmt.Errorf("parse point %q: %w", s, err)
	}
	return Point{Lat: lat, Lon: lon}, nil
}

// ParsePointOrDefault decodes a WKT point, falling back to DefaultPoint.
// The second return value is false when the fallback was used.
func ParsePointOrDefault(s string) (Point, bool) {
	p, err := ParsePoint(s)
	if err != nil {
		return DefaultPoint, false
	}
	return p, true
}

var errMalformedPoint = errors.New("malformed WKT point")
