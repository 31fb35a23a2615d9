package area

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeValid(t *testing.T) {
	assert.True(t, TypeMoment.Valid())
	assert.True(t, TypeSpace.Valid())
	assert.True(t, TypeEvent.Valid())
	assert.False(t, Type("trends").Valid())
	assert.False(t, Type("").Valid())
}

func TestPaginationNormalize(t *testing.T) {
	p := Pagination{}.Normalize()
	assert.Equal(t, 20, p.ItemsPerPage)
	assert.Equal(t, 1, p.PageNumber)
	assert.Equal(t, 0, p.Offset())

	p = Pagination{ItemsPerPage: 500, PageNumber: 3}.Normalize()
	assert.Equal(t, 100, p.ItemsPerPage)
	assert.Equal(t, 200, p.Offset())

	p = Pagination{ItemsPerPage: -1, PageNumber: -2}.Normalize()
	assert.Equal(t, 20, p.ItemsPerPage)
	assert.Equal(t, 1, p.PageNumber)
}

func TestEnrichOptionsCacheEligible(t *testing.T) {
	assert.True(t, EnrichOptions{WithMedia: true, WithUser: true}.CacheEligible())
	assert.False(t, EnrichOptions{WithMedia: true}.CacheEligible())
	assert.False(t, EnrichOptions{WithUser: true}.CacheEligible())
	assert.False(t, EnrichOptions{}.CacheEligible())
}
