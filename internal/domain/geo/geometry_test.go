package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometryValidate(t *testing.T) {
	tests := []struct {
		name    string
		g       Geometry
		wantErr bool
	}{
		{
			name: "valid circle",
			g:    CircleGeometry(40.7, -74.0, 500),
		},
		{
			name:    "zero radius",
			g:       CircleGeometry(40.7, -74.0, 0),
			wantErr: true,
		},
		{
			name:    "negative radius",
			g:       CircleGeometry(40.7, -74.0, -10),
			wantErr: true,
		},
		{
			name:    "latitude out of range",
			g:       CircleGeometry(91, 0, 100),
			wantErr: true,
		},
		{
			name:    "longitude out of range",
			g:       CircleGeometry(0, -181, 100),
			wantErr: true,
		},
		{
			name: "valid triangle",
			g: PolygonGeometry([]Point{
				{Latitude: 0, Longitude: 0},
				{Latitude: 0, Longitude: 1},
				{Latitude: 1, Longitude: 0},
			}),
		},
		{
			name: "closed ring accepted",
			g: PolygonGeometry([]Point{
				{Latitude: 0, Longitude: 0},
				{Latitude: 0, Longitude: 1},
				{Latitude: 1, Longitude: 0},
				{Latitude: 0, Longitude: 0},
			}),
		},
		{
			name: "too few vertices",
			g: PolygonGeometry([]Point{
				{Latitude: 0, Longitude: 0},
				{Latitude: 1, Longitude: 1},
			}),
			wantErr: true,
		},
		{
			name: "self-intersecting bowtie",
			g: PolygonGeometry([]Point{
				{Latitude: 0, Longitude: 0},
				{Latitude: 1, Longitude: 1},
				{Latitude: 0, Longitude: 1},
				{Latitude: 1, Longitude: 0},
			}),
			wantErr: true,
		},
		{
			name: "both forms set",
			g: Geometry{
				Center:       &Point{Latitude: 1, Longitude: 1},
				RadiusMeters: 100,
				Polygon:      []Point{{}, {Latitude: 1}, {Longitude: 1}},
			},
			wantErr: true,
		},
		{
			name:    "neither form set",
			g:       Geometry{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGeometryCentroid(t *testing.T) {
	circle := CircleGeometry(40.7, -74.0, 500)
	assert.Equal(t, Point{Latitude: 40.7, Longitude: -74.0}, circle.Centroid())

	square := PolygonGeometry([]Point{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 2},
		{Latitude: 2, Longitude: 2},
		{Latitude: 2, Longitude: 0},
	})
	c := square.Centroid()
	assert.InDelta(t, 1.0, c.Latitude, 1e-9)
	assert.InDelta(t, 1.0, c.Longitude, 1e-9)
}

func TestStorageExpressionCircle(t *testing.T) {
	expr, args := CircleGeometry(40.7, -74.0, 250).StorageExpression(3)

	assert.Contains(t, expr, "ST_Buffer")
	assert.Contains(t, expr, "$3")
	assert.Contains(t, expr, "$4")
	assert.Contains(t, expr, "$5")
	require.Len(t, args, 3)
	// PostGIS point order is (lng, lat).
	assert.Equal(t, -74.0, args[0])
	assert.Equal(t, 40.7, args[1])
	assert.Equal(t, 250.0, args[2])
}

func TestStorageExpressionPolygon(t *testing.T) {
	g := PolygonGeometry([]Point{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 1},
		{Latitude: 1, Longitude: 0},
	})
	expr, args := g.StorageExpression(1)

	assert.Contains(t, expr, "ST_GeomFromText($1, 4326)")
	require.Len(t, args, 1)
	// The ring is closed back to the first vertex.
	assert.Equal(t, "POLYGON((0 0, 1 0, 0 1, 0 0))", args[0])
}

func TestClampProximity(t *testing.T) {
	assert.Equal(t, float64(DefaultProximityMeters), ClampProximity(0))
	assert.Equal(t, float64(DefaultProximityMeters), ClampProximity(-5))
	assert.Equal(t, 1000.0, ClampProximity(1000))
	assert.Equal(t, float64(MaxProximityMeters), ClampProximity(MaxProximityMeters+1))
}

func TestDistanceMeters(t *testing.T) {
	nyc := Point{Latitude: 40.7128, Longitude: -74.0060}
	la := Point{Latitude: 34.0522, Longitude: -118.2437}

	// Roughly 3936 km.
	d := DistanceMeters(nyc, la)
	assert.InDelta(t, 3.936e6, d, 2e4)

	assert.Zero(t, DistanceMeters(nyc, nyc))
}

func TestWithinDistance(t *testing.T) {
	center := CircleGeometry(40.7128, -74.0060, 100)

	near := Point{Latitude: 40.7138, Longitude: -74.0060}
	far := Point{Latitude: 41.7128, Longitude: -74.0060}

	assert.True(t, WithinDistance(near, center, 5000))
	assert.False(t, WithinDistance(far, center, 5000))
}
