package geo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waypost/internal/domain/geo"
)

func TestRegionCode(t *testing.T) {
	g := NewRegionGeocoder()

	tests := []struct {
		name string
		p    geo.Point
		want string
	}{
		{"new york", geo.Point{Latitude: 40.7128, Longitude: -74.0060}, "US"},
		{"paris", geo.Point{Latitude: 48.8566, Longitude: 2.3522}, "FR"},
		{"lisbon shadows the iberian box", geo.Point{Latitude: 38.7223, Longitude: -9.1393}, "PT"},
		{"sydney", geo.Point{Latitude: -33.8688, Longitude: 151.2093}, "AU"},
		{"tokyo", geo.Point{Latitude: 35.6762, Longitude: 139.6503}, "JP"},
		{"mid atlantic", geo.Point{Latitude: 0, Longitude: -30}, geo.RegionUnknown},
		{"south pole", geo.Point{Latitude: -89.9, Longitude: 0}, geo.RegionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := g.RegionCode(context.Background(), tt.p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}
}
