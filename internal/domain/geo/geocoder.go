package geo

import "context"

// RegionUnknown is assigned when no country match is found for a centroid.
// Open-ocean and polar coordinates fall through to this.
const RegionUnknown = "ZZ"

// Geocoder resolves a coarse region tag for a coordinate. The region is
// derived exactly once at area creation and is immutable afterwards.
type Geocoder interface {
	// RegionCode returns an ISO 3166-1 alpha-2 country code for the point,
	// or RegionUnknown when the point matches no known country.
	RegionCode(ctx context.Context, p Point) (string, error)
}
