package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waypost/internal/domain/area"
	"waypost/internal/domain/geo"
)

func TestBuildSearchQueryPublicScope(t *testing.T) {
	f := area.SearchFilters{
		Center:          geo.Point{Latitude: 40.7, Longitude: -74.0},
		ProximityMeters: 5000,
		FromUserIDs:     []string{"u1"},
		IncludePublic:   true,
	}
	query, args := buildSearchQuery(area.TypeMoment, f, area.Pagination{ItemsPerPage: 20, PageNumber: 2})

	assert.Contains(t, query, "FROM moments")
	assert.Contains(t, query, "ST_DWithin(geom::geography, ST_MakePoint($1, $2)::geography, $3)")
	assert.Contains(t, query, "is_mature_content = false")
	assert.Contains(t, query, "is_draft = false")
	assert.Contains(t, query, "(from_user_id = ANY($4) OR is_public = true)")
	assert.Contains(t, query, "ORDER BY created_at DESC LIMIT $5 OFFSET $6")
	assert.NotContains(t, query, "is_claim_pending")

	require.Len(t, args, 6)
	assert.Equal(t, -74.0, args[0])
	assert.Equal(t, 40.7, args[1])
	assert.Equal(t, 5000.0, args[2])
	assert.Equal(t, []string{"u1"}, args[3])
	assert.Equal(t, 20, args[4])
	assert.Equal(t, 20, args[5])
}

func TestBuildSearchQueryDefaultProximity(t *testing.T) {
	_, args := buildSearchQuery(area.TypeMoment, area.SearchFilters{}, area.Pagination{})
	assert.Equal(t, float64(geo.DefaultProximityMeters), args[2])
}

func TestBuildSearchQueryHidesPendingSpaces(t *testing.T) {
	query, _ := buildSearchQuery(area.TypeSpace, area.SearchFilters{}, area.Pagination{})
	assert.Contains(t, query, "FROM spaces")
	assert.Contains(t, query, "is_claim_pending = false")

	query, _ = buildSearchQuery(area.TypeSpace, area.SearchFilters{ClaimPendingOK: true}, area.Pagination{})
	assert.NotContains(t, query, "is_claim_pending")
}

func TestBuildSearchQueryTextFilter(t *testing.T) {
	f := area.SearchFilters{FilterBy: "category", Query: "music"}
	query, args := buildSearchQuery(area.TypeMoment, f, area.Pagination{})
	assert.Contains(t, query, "category = $4")
	assert.Contains(t, args, "music")

	f.Partial = true
	query, args = buildSearchQuery(area.TypeMoment, f, area.Pagination{})
	assert.Contains(t, query, "category ILIKE $4")
	assert.Contains(t, args, "%music%")
}

func TestBuildSearchQueryRejectsUnknownFilterColumn(t *testing.T) {
	f := area.SearchFilters{FilterBy: "id; DROP TABLE moments", Query: "x"}
	query, args := buildSearchQuery(area.TypeMoment, f, area.Pagination{})

	assert.NotContains(t, query, "DROP TABLE")
	assert.NotContains(t, args, "x")
}

func TestBuildSearchMineQuery(t *testing.T) {
	f := area.MineFilters{FromUserID: "u1", DraftsOnly: true}
	query, args := buildSearchMineQuery(area.TypeMoment, f, area.Pagination{})

	assert.Contains(t, query, "from_user_id = $1")
	assert.Contains(t, query, "is_draft = true")
	assert.Equal(t, "u1", args[0])

	query, _ = buildSearchMineQuery(area.TypeMoment, area.MineFilters{FromUserID: "u1", PublicOnly: true}, area.Pagination{})
	assert.Contains(t, query, "is_public = true")
	assert.NotContains(t, query, "is_draft = true")
}

func TestBuildFindByIDsQuery(t *testing.T) {
	before := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := area.FindFilters{Limit: 50, Order: "asc", Before: &before, HideMature: true}
	query, args := buildFindByIDsQuery(area.TypeEvent, []string{"a", "b"}, f)

	assert.Contains(t, query, "FROM events")
	assert.Contains(t, query, "id = ANY($1)")
	assert.Contains(t, query, "is_mature_content = false")
	assert.Contains(t, query, "created_at < $2")
	assert.Contains(t, query, "ORDER BY created_at ASC LIMIT $3")

	require.Len(t, args, 3)
	assert.Equal(t, []string{"a", "b"}, args[0])
	assert.Equal(t, before, args[1])
	assert.Equal(t, 50, args[2])
}

func TestBuildFindByIDsQueryDefaults(t *testing.T) {
	query, args := buildFindByIDsQuery(area.TypeMoment, []string{"a"}, area.FindFilters{})

	assert.Contains(t, query, "ORDER BY created_at DESC LIMIT $2")
	assert.Equal(t, 1000, args[1])
}

func TestSelectColumnsPerKind(t *testing.T) {
	assert.Contains(t, selectColumns(area.TypeEvent), "schedule_start_at")
	assert.Contains(t, selectColumns(area.TypeSpace), "is_claim_pending")
	assert.NotContains(t, selectColumns(area.TypeMoment), "schedule_start_at")
	assert.NotContains(t, selectColumns(area.TypeMoment), "is_claim_pending")
}
