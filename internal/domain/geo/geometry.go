package geo

import (
	"fmt"
	"math"
	"strings"
)

// Proximity bounds for distance search, in meters. Callers may override the
// default per request, but overrides are clamped to keep query cost bounded.
const (
	DefaultProximityMeters = 96560
	MaxProximityMeters     = 321800
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geometry is an area's spatial footprint: a circle around a center point or
// a polygon. Exactly one form is set.
type Geometry struct {
	Center       *Point  `json:"center,omitempty"`
	RadiusMeters float64 `json:"radiusMeters,omitempty"`
	Polygon      []Point `json:"polygon,omitempty"`
}

// CircleGeometry builds a circle-by-radius geometry.
func CircleGeometry(lat, lng, radiusMeters float64) Geometry {
	return Geometry{
		Center:       &Point{Latitude: lat, Longitude: lng},
		RadiusMeters: radiusMeters,
	}
}

// PolygonGeometry builds a polygon geometry from ordered vertices.
func PolygonGeometry(vertices []Point) Geometry {
	return Geometry{Polygon: vertices}
}

// IsCircle reports whether the circle form is set.
func (g Geometry) IsCircle() bool {
	return g.Center != nil
}

// Validate enforces the geometry invariants: exactly one form set, radius
// positive, coordinates in range, polygons with at least three vertices and
// no self-intersection. Degenerate shapes are rejected here so they never
// reach the store.
func (g Geometry) Validate() error {
	hasCircle := g.Center != nil
	hasPolygon := len(g.Polygon) > 0

	if hasCircle == hasPolygon {
		return fmt.Errorf("geometry requires exactly one of center+radius or polygon")
	}

	if hasCircle {
		if err := validatePoint(*g.Center); err != nil {
			return err
		}
		if g.RadiusMeters <= 0 {
			return fmt.Errorf("radius must be greater than zero, got %v", g.RadiusMeters)
		}
		return nil
	}

	ring := closedRing(g.Polygon)
	if len(ring)-1 < 3 {
		return fmt.Errorf("polygon requires at least 3 vertices, got %d", len(g.Polygon))
	}
	for _, p := range ring {
		if err := validatePoint(p); err != nil {
			return err
		}
	}
	if ringSelfIntersects(ring) {
		return fmt.Errorf("polygon must not self-intersect")
	}

	return nil
}

func validatePoint(p Point) error {
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("latitude out of range: %v", p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("longitude out of range: %v", p.Longitude)
	}
	return nil
}

// Centroid returns the representative point used for region derivation:
// the circle center, or the vertex average for polygons.
func (g Geometry) Centroid() Point {
	if g.Center != nil {
		return *g.Center
	}

	var lat, lng float64
	for _, p := range g.Polygon {
		lat += p.Latitude
		lng += p.Longitude
	}
	n := float64(len(g.Polygon))
	return Point{Latitude: lat / n, Longitude: lng / n}
}

// StorageExpression returns the PostGIS SQL fragment producing the stored
// geometry, with its bind arguments. Circles are buffered points cast through
// geography so the radius is in meters; polygons are built from a WKT ring.
// Arg placeholders start at argIndex.
func (g Geometry) StorageExpression(argIndex int) (string, []interface{}) {
	if g.IsCircle() {
		expr := fmt.Sprintf(
			"ST_SetSRID(ST_Buffer(ST_MakePoint($%d, $%d)::geography, $%d)::geometry, 4326)",
			argIndex, argIndex+1, argIndex+2,
		)
		return expr, []interface{}{g.Center.Longitude, g.Center.Latitude, g.RadiusMeters}
	}

	ring := closedRing(g.Polygon)
	coords := make([]string, len(ring))
	for i, p := range ring {
		coords[i] = fmt.Sprintf("%v %v", p.Longitude, p.Latitude)
	}
	wkt := fmt.Sprintf("POLYGON((%s))", strings.Join(coords, ", "))
	return fmt.Sprintf("ST_GeomFromText($%d, 4326)", argIndex), []interface{}{wkt}
}

// ClampProximity bounds a caller-supplied proximity override, falling back to
// the default when the override is unset or non-positive.
func ClampProximity(meters float64) float64 {
	if meters <= 0 {
		return DefaultProximityMeters
	}
	if meters > MaxProximityMeters {
		return MaxProximityMeters
	}
	return meters
}

const earthRadiusMeters = 6371000

// DistanceMeters returns the haversine distance between two points.
func DistanceMeters(a, b Point) float64 {
	latA := a.Latitude * math.Pi / 180
	latB := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// WithinDistance reports whether a point falls within proximityMeters of the
// geometry's centroid. The store performs the authoritative ST_DWithin check;
// this mirrors it for in-process filtering.
func WithinDistance(p Point, g Geometry, proximityMeters float64) bool {
	return DistanceMeters(p, g.Centroid()) <= ClampProximity(proximityMeters)
}

// closedRing returns the polygon vertices with the first vertex appended when
// the caller did not close the ring.
func closedRing(vertices []Point) []Point {
	if len(vertices) == 0 {
		return vertices
	}
	first, last := vertices[0], vertices[len(vertices)-1]
	if first == last {
		return vertices
	}
	ring := make([]Point, len(vertices)+1)
	copy(ring, vertices)
	ring[len(vertices)] = first
	return ring
}

// ringSelfIntersects checks every non-adjacent segment pair in a closed ring.
func ringSelfIntersects(ring []Point) bool {
	n := len(ring) - 1
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			// Skip adjacent segments, including the wrap-around pair.
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			if segmentsIntersect(ring[i], ring[i+1], ring[j], ring[j+1]) {
				return true
			}
		}
	}
	return false
}

func segmentsIntersect(a, b, c, d Point) bool {
	d1 := crossOrientation(c, d, a)
	d2 := crossOrientation(c, d, b)
	d3 := crossOrientation(a, b, c)
	d4 := crossOrientation(a, b, d)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	return (d1 == 0 && onSegment(c, d, a)) ||
		(d2 == 0 && onSegment(c, d, b)) ||
		(d3 == 0 && onSegment(a, b, c)) ||
		(d4 == 0 && onSegment(a, b, d))
}

func crossOrientation(a, b, p Point) float64 {
	return (b.Longitude-a.Longitude)*(p.Latitude-a.Latitude) -
		(b.Latitude-a.Latitude)*(p.Longitude-a.Longitude)
}

func onSegment(a, b, p Point) bool {
	return math.Min(a.Longitude, b.Longitude) <= p.Longitude &&
		p.Longitude <= math.Max(a.Longitude, b.Longitude) &&
		math.Min(a.Latitude, b.Latitude) <= p.Latitude &&
		p.Latitude <= math.Max(a.Latitude, b.Latitude)
}
