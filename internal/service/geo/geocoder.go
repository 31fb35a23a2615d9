package geo

import (
	"context"

	"waypost/internal/domain/geo"
)

// RegionGeocoder resolves a point to an ISO 3166-1 alpha-2 country code
// using a coarse bounding-box table. Coarse is fine here: region codes only
// scope incentive coupons and content partitioning, so a border-town miss
// picks a neighboring code rather than producing a wrong answer class.
type RegionGeocoder struct{}

// NewRegionGeocoder creates a new offline region geocoder.
func NewRegionGeocoder() *RegionGeocoder {
	return &RegionGeocoder{}
}

type regionBox struct {
	code           string
	minLat, minLng float64
	maxLat, maxLng float64
}

// Boxes ordered so smaller countries shadow the larger boxes that
// contain them.
var regionBoxes = []regionBox{
	{"PT", 36.9, -9.6, 42.2, -6.2},
	{"IE", 51.4, -10.6, 55.4, -5.3},
	{"GB", 49.9, -8.2, 60.9, 1.8},
	{"ES", 35.9, -9.4, 43.8, 3.4},
	{"FR", 41.3, -5.2, 51.1, 9.6},
	{"IT", 36.6, 6.6, 47.1, 18.6},
	{"CH", 45.8, 5.9, 47.9, 10.5},
	{"AT", 46.3, 9.5, 49.0, 17.2},
	{"NL", 50.7, 3.3, 53.6, 7.3},
	{"BE", 49.5, 2.5, 51.5, 6.4},
	{"DE", 47.2, 5.8, 55.1, 15.1},
	{"PL", 49.0, 14.1, 54.9, 24.2},
	{"SE", 55.3, 11.0, 69.1, 24.2},
	{"NO", 57.9, 4.6, 71.2, 31.2},
	{"FI", 59.7, 20.5, 70.1, 31.6},
	{"UA", 44.3, 22.1, 52.4, 40.2},
	{"GR", 34.8, 19.3, 41.8, 28.3},
	{"TR", 35.8, 26.0, 42.1, 44.8},
	{"IL", 29.5, 34.2, 33.3, 35.9},
	{"SA", 16.3, 34.5, 32.2, 55.7},
	{"AE", 22.6, 51.5, 26.1, 56.4},
	{"ZA", -34.9, 16.4, -22.1, 32.9},
	{"NG", 4.2, 2.6, 13.9, 14.7},
	{"KE", -4.7, 33.9, 5.5, 41.9},
	{"EG", 22.0, 24.6, 31.7, 36.9},
	{"IN", 6.7, 68.1, 35.5, 97.4},
	{"KR", 33.1, 125.0, 38.6, 129.6},
	{"JP", 24.0, 122.9, 45.6, 146.0},
	{"TW", 21.9, 120.0, 25.3, 122.0},
	{"PH", 4.6, 116.9, 21.1, 126.6},
	{"VN", 8.2, 102.1, 23.4, 109.5},
	{"TH", 5.6, 97.3, 20.5, 105.6},
	{"MY", 0.8, 99.6, 7.4, 119.3},
	{"SG", 1.1, 103.6, 1.5, 104.1},
	{"ID", -11.0, 95.0, 6.1, 141.0},
	{"CN", 18.2, 73.5, 53.6, 134.8},
	{"RU", 41.2, 27.3, 77.7, 180.0},
	{"NZ", -47.3, 166.4, -34.4, 178.6},
	{"AU", -43.7, 113.1, -10.7, 153.6},
	{"MX", 14.5, -118.4, 32.7, -86.7},
	{"CU", 19.8, -85.0, 23.3, -74.1},
	{"CR", 8.0, -85.9, 11.2, -82.5},
	{"PA", 7.2, -83.1, 9.6, -77.2},
	{"CO", -4.2, -79.1, 12.5, -66.9},
	{"EC", -5.0, -81.1, 1.4, -75.2},
	{"PE", -18.3, -81.3, -0.1, -68.7},
	{"CL", -55.9, -75.6, -17.5, -66.4},
	{"AR", -55.1, -73.6, -21.8, -53.6},
	{"UY", -35.0, -58.4, -30.1, -53.1},
	{"BR", -33.8, -73.9, 5.3, -34.7},
	{"CA", 49.0, -141.0, 83.1, -52.6},
	{"US", 24.4, -125.0, 49.4, -66.9},
}

// RegionCode returns the alpha-2 code for the country containing p, or
// geo.RegionUnknown when no box matches (oceans, poles).
func (g *RegionGeocoder) RegionCode(_ context.Context, p geo.Point) (string, error) {
	for _, b := range regionBoxes {
		if p.Latitude >= b.minLat && p.Latitude <= b.maxLat &&
			p.Longitude >= b.minLng && p.Longitude <= b.maxLng {
			return b.code, nil
		}
	}
	return geo.RegionUnknown, nil
}
