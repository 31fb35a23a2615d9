package storage

import (
	"fmt"
	"strings"

	"waypost/internal/domain/area"
	"waypost/internal/domain/geo"
)

// Base columns shared by all three area tables. Kind-specific columns are
// appended per table.
const baseColumns = `id, from_user_id, message, notification_msg, hash_tags, category,
	media_ids, is_public, is_draft, is_mature_content, region, max_views,
	latitude, longitude, radius, polygon_coords, created_at, updated_at`

const eventColumns = baseColumns + `, schedule_start_at, schedule_stop_at, space_id, group_id`

const spaceColumns = baseColumns + `, is_claim_pending, requested_by_user_id`

func tableName(t area.Type) string {
	// Type values are a closed enum, safe to interpolate.
	return string(t)
}

func selectColumns(t area.Type) string {
	switch t {
	case area.TypeEvent:
		return eventColumns
	case area.TypeSpace:
		return spaceColumns
	default:
		return baseColumns
	}
}

// buildSearchQuery composes the proximity search:
// within-distance AND not-mature AND (owner-in OR public), ordered by
// insertion recency, paginated without a count.
func buildSearchQuery(t area.Type, f area.SearchFilters, p area.Pagination) (string, []interface{}) {
	var sb strings.Builder
	args := []interface{}{}
	idx := 1

	sb.WriteString(fmt.Sprintf("SELECT %s FROM %s", selectColumns(t), tableName(t)))

	proximity := geo.ClampProximity(f.ProximityMeters)
	sb.WriteString(fmt.Sprintf(
		" WHERE ST_DWithin(geom::geography, ST_MakePoint($%d, $%d)::geography, $%d)",
		idx, idx+1, idx+2,
	))
	args = append(args, f.Center.Longitude, f.Center.Latitude, proximity)
	idx += 3

	sb.WriteString(" AND is_mature_content = false")
	sb.WriteString(" AND is_draft = false")

	// Pending claim requests stay hidden unless explicitly requested.
	if t == area.TypeSpace && !f.ClaimPendingOK {
		sb.WriteString(" AND is_claim_pending = false")
	}

	if len(f.FromUserIDs) > 0 {
		sb.WriteString(fmt.Sprintf(" AND (from_user_id = ANY($%d)", idx))
		args = append(args, f.FromUserIDs)
		idx++
		if f.IncludePublic {
			sb.WriteString(" OR is_public = true")
		}
		sb.WriteString(")")
	} else if f.IncludePublic {
		sb.WriteString(" AND is_public = true")
	}

	if f.FilterBy != "" && f.Query != "" {
		column, ok := filterColumns[f.FilterBy]
		if ok {
			if f.Partial {
				sb.WriteString(fmt.Sprintf(" AND %s ILIKE $%d", column, idx))
				args = append(args, "%"+f.Query+"%")
			} else {
				sb.WriteString(fmt.Sprintf(" AND %s = $%d", column, idx))
				args = append(args, f.Query)
			}
			idx++
		}
	}

	p = p.Normalize()
	sb.WriteString(fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1))
	args = append(args, p.ItemsPerPage, p.Offset())

	return sb.String(), args
}

// buildSearchMineQuery lists the caller's own rows, including drafts.
func buildSearchMineQuery(t area.Type, f area.MineFilters, p area.Pagination) (string, []interface{}) {
	var sb strings.Builder
	args := []interface{}{}
	idx := 1

	sb.WriteString(fmt.Sprintf("SELECT %s FROM %s", selectColumns(t), tableName(t)))
	sb.WriteString(fmt.Sprintf(" WHERE from_user_id = $%d", idx))
	args = append(args, f.FromUserID)
	idx++

	sb.WriteString(" AND is_mature_content = false")

	if f.DraftsOnly {
		sb.WriteString(" AND is_draft = true")
	}
	if f.PublicOnly {
		sb.WriteString(" AND is_public = true")
	}

	if f.FilterBy != "" && f.Query != "" {
		if column, ok := filterColumns[f.FilterBy]; ok {
			if f.Partial {
				sb.WriteString(fmt.Sprintf(" AND %s ILIKE $%d", column, idx))
				args = append(args, "%"+f.Query+"%")
			} else {
				sb.WriteString(fmt.Sprintf(" AND %s = $%d", column, idx))
				args = append(args, f.Query)
			}
			idx++
		}
	}

	p = p.Normalize()
	sb.WriteString(fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1))
	args = append(args, p.ItemsPerPage, p.Offset())

	return sb.String(), args
}

// buildFindByIDsQuery batch-fetches by id with optional recency cursor.
func buildFindByIDsQuery(t area.Type, ids []string, f area.FindFilters) (string, []interface{}) {
	var sb strings.Builder
	args := []interface{}{}
	idx := 1

	sb.WriteString(fmt.Sprintf("SELECT %s FROM %s", selectColumns(t), tableName(t)))
	sb.WriteString(fmt.Sprintf(" WHERE id = ANY($%d)", idx))
	args = append(args, ids)
	idx++

	if t == area.TypeSpace {
		sb.WriteString(" AND is_claim_pending = false")
	}
	if f.HideMature {
		sb.WriteString(" AND is_mature_content = false")
	}
	if f.Before != nil {
		sb.WriteString(fmt.Sprintf(" AND created_at < $%d", idx))
		args = append(args, *f.Before)
		idx++
	}

	order := "DESC"
	if strings.EqualFold(f.Order, "asc") {
		order = "ASC"
	}
	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	sb.WriteString(fmt.Sprintf(" ORDER BY created_at %s LIMIT $%d", order, idx))
	args = append(args, limit)

	return sb.String(), args
}

// filterColumns whitelists the text-filterable columns; anything else is
// silently ignored rather than interpolated.
var filterColumns = map[string]string{
	"message":         "message",
	"notificationMsg": "notification_msg",
	"category":        "category",
	"hashTags":        "hash_tags",
	"region":          "region",
}
