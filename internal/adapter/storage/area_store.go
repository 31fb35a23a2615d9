package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"waypost/internal/domain/area"
	"waypost/internal/domain/geo"
)

// Postgres error codes surfaced as structured conflicts.
const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
)

// AreaStore implements area.Store over Postgres/PostGIS. The three kinds
// live in separate tables sharing one column shape.
type AreaStore struct {
	db *pgxpool.Pool
}

// NewAreaStore creates a new area store
func NewAreaStore(db *pgxpool.Pool) *AreaStore {
	return &AreaStore{
		db: db,
	}
}

// IsDuplicate checks for an exact prior submission by the same user.
func (s *AreaStore) IsDuplicate(ctx context.Context, t area.Type, fromUserID, message, notificationMsg string) (bool, error) {
	query := fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s WHERE from_user_id = $1 AND message = $2 AND notification_msg = $3)",
		tableName(t),
	)

	var exists bool
	if err := s.db.QueryRow(ctx, query, fromUserID, message, notificationMsg).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking duplicate: %w", err)
	}

	return exists, nil
}

// SpaceOverlaps reports whether the geometry shares interior area with an
// existing space. ST_Relate with the '2********' matrix matches only
// interior-interior overlap, so touching boundaries are allowed.
func (s *AreaStore) SpaceOverlaps(ctx context.Context, g geo.Geometry) (bool, error) {
	expr, args := g.StorageExpression(1)
	query := fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM spaces WHERE ST_Relate(geom, %s, '2********'))",
		expr,
	)

	var exists bool
	if err := s.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking space overlap: %w", err)
	}

	return exists, nil
}

// Insert persists a fully derived area and returns the stored row.
func (s *AreaStore) Insert(ctx context.Context, a *area.Area) (*area.Area, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}

	polygonJSON, err := marshalPolygon(a.Geometry)
	if err != nil {
		return nil, err
	}

	centroid := a.Geometry.Centroid()

	columns := []string{
		"id", "from_user_id", "message", "notification_msg", "hash_tags", "category",
		"media_ids", "is_public", "is_draft", "is_mature_content", "region", "max_views",
		"latitude", "longitude", "radius", "polygon_coords",
	}
	args := []interface{}{
		a.ID, a.FromUserID, a.Message, a.NotificationMsg, a.HashTags, a.Category,
		a.MediaIDs, a.IsPublic, a.IsDraft, a.IsMatureContent, a.Region, a.MaxViews,
		centroid.Latitude, centroid.Longitude, a.Geometry.RadiusMeters, polygonJSON,
	}

	switch a.Type {
	case area.TypeEvent:
		columns = append(columns, "schedule_start_at", "schedule_stop_at", "space_id", "group_id")
		args = append(args, a.ScheduleStartAt, a.ScheduleStopAt, nullable(a.SpaceID), nullable(a.GroupID))
	case area.TypeSpace:
		columns = append(columns, "is_claim_pending", "requested_by_user_id")
		args = append(args, a.IsClaimPending, nullable(a.RequestedByUserID))
	}

	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	geomExpr, geomArgs := a.Geometry.StorageExpression(len(args) + 1)
	columns = append(columns, "geom")
	placeholders = append(placeholders, geomExpr)
	args = append(args, geomArgs...)

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		tableName(a.Type),
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		selectColumns(a.Type),
	)

	stored, err := scanArea(a.Type, s.db.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if a.Type == area.TypeSpace && errors.As(err, &pgErr) &&
			(pgErr.Code == pgExclusionViolation || pgErr.Code == pgUniqueViolation) {
			return nil, area.ErrOverlapConflict
		}
		return nil, fmt.Errorf("error inserting %s: %w", a.Type, err)
	}

	return stored, nil
}

// GetByID fetches one area; spaces come back with their incentives.
func (s *AreaStore) GetByID(ctx context.Context, t area.Type, id string) (*area.Area, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", selectColumns(t), tableName(t))

	a, err := scanArea(t, s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, area.ErrNotFound
		}
		return nil, fmt.Errorf("error querying %s: %w", t, err)
	}

	if t == area.TypeSpace {
		incentives, err := s.incentivesForSpace(ctx, id)
		if err != nil {
			return nil, err
		}
		a.Incentives = incentives
	}

	return a, nil
}

// Update applies a partial, owner-scoped update. Geometry and region are
// immutable and never touched here.
func (s *AreaStore) Update(ctx context.Context, t area.Type, id, fromUserID string, params area.UpdateParams) (*area.Area, error) {
	set := []string{}
	args := []interface{}{}
	idx := 1

	add := func(column string, value interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if params.Message != nil {
		add("message", *params.Message)
	}
	if params.NotificationMsg != nil {
		add("notification_msg", *params.NotificationMsg)
	}
	if params.HashTags != nil {
		add("hash_tags", *params.HashTags)
	}
	if params.Category != nil {
		add("category", *params.Category)
	}
	if params.IsPublic != nil {
		add("is_public", *params.IsPublic)
	}
	if params.IsDraft != nil {
		add("is_draft", *params.IsDraft)
	}
	if params.IsMatureContent != nil {
		add("is_mature_content", *params.IsMatureContent)
	}
	if params.MediaIDs != nil {
		add("media_ids", *params.MediaIDs)
	}
	if t == area.TypeEvent {
		if params.ScheduleStartAt != nil {
			add("schedule_start_at", *params.ScheduleStartAt)
		}
		if params.ScheduleStopAt != nil {
			add("schedule_stop_at", *params.ScheduleStopAt)
		}
	}
	if t == area.TypeSpace {
		if params.IsClaimPending != nil {
			add("is_claim_pending", *params.IsClaimPending)
		}
		if params.RequestedByUserID != nil {
			add("requested_by_user_id", nullable(*params.RequestedByUserID))
		}
	}

	add("updated_at", time.Now().UTC())

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d AND from_user_id = $%d RETURNING %s",
		tableName(t), strings.Join(set, ", "), idx, idx+1, selectColumns(t),
	)
	args = append(args, id, fromUserID)

	a, err := scanArea(t, s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, area.ErrNotFound
		}
		return nil, fmt.Errorf("error updating %s: %w", t, err)
	}

	return a, nil
}

// SetModerationFlags flips the mature/public pair together so an unsafe
// media verdict can never leave a public mature row behind.
func (s *AreaStore) SetModerationFlags(ctx context.Context, t area.Type, id string, isMature, isPublic bool) error {
	query := fmt.Sprintf(
		"UPDATE %s SET is_mature_content = $1, is_public = $2, updated_at = $3 WHERE id = $4",
		tableName(t),
	)

	tag, err := s.db.Exec(ctx, query, isMature, isPublic, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("error setting moderation flags: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return area.ErrNotFound
	}

	return nil
}

// Search runs the composed proximity query.
func (s *AreaStore) Search(ctx context.Context, t area.Type, f area.SearchFilters, p area.Pagination) ([]area.Area, error) {
	query, args := buildSearchQuery(t, f, p)
	return s.queryAreas(ctx, t, query, args)
}

// SearchMine lists the caller's own rows, drafts included.
func (s *AreaStore) SearchMine(ctx context.Context, t area.Type, f area.MineFilters, p area.Pagination) ([]area.Area, error) {
	query, args := buildSearchMineQuery(t, f, p)
	return s.queryAreas(ctx, t, query, args)
}

// FindByIDs batch-fetches areas by id.
func (s *AreaStore) FindByIDs(ctx context.Context, t area.Type, ids []string, f area.FindFilters) ([]area.Area, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args := buildFindByIDsQuery(t, ids, f)
	return s.queryAreas(ctx, t, query, args)
}

// Delete hard-deletes the caller's rows. Space deletion cascades to the
// space's events inside the same transaction so no orphaned events survive.
func (s *AreaStore) Delete(ctx context.Context, t area.Type, fromUserID string, ids []string) ([]area.Area, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error starting delete transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if t == area.TypeSpace {
		// Cascade only through spaces the caller owns; the space delete
		// below is owner-scoped too.
		if _, err := tx.Exec(ctx,
			"DELETE FROM events WHERE space_id IN (SELECT id FROM spaces WHERE from_user_id = $1 AND id = ANY($2))",
			fromUserID, ids,
		); err != nil {
			return nil, fmt.Errorf("error cascading space delete to events: %w", err)
		}
	}

	query := fmt.Sprintf(
		"DELETE FROM %s WHERE from_user_id = $1 AND id = ANY($2) RETURNING %s",
		tableName(t), selectColumns(t),
	)

	rows, err := tx.Query(ctx, query, fromUserID, ids)
	if err != nil {
		return nil, fmt.Errorf("error deleting %s: %w", t, err)
	}

	deleted, err := collectAreas(t, rows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error committing delete: %w", err)
	}

	return deleted, nil
}

func (s *AreaStore) queryAreas(ctx context.Context, t area.Type, query string, args []interface{}) ([]area.Area, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return collectAreas(t, rows)
}

func (s *AreaStore) incentivesForSpace(ctx context.Context, spaceID string) ([]area.Incentive, error) {
	query := `
		SELECT id, space_id, incentive_key, incentive_reward_key, incentive_reward_value,
			max_use_count, is_active, region, starts_at, ends_at
		FROM space_incentives
		WHERE space_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.Query(ctx, query, spaceID)
	if err != nil {
		return nil, fmt.Errorf("error querying space incentives: %w", err)
	}
	defer rows.Close()

	var incentives []area.Incentive
	for rows.Next() {
		var inc area.Incentive
		if err := rows.Scan(
			&inc.ID,
			&inc.SpaceID,
			&inc.Key,
			&inc.RewardKey,
			&inc.RewardValue,
			&inc.MaxUseCount,
			&inc.IsActive,
			&inc.Region,
			&inc.StartsAt,
			&inc.EndsAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning incentive: %w", err)
		}
		incentives = append(incentives, inc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating incentives: %w", err)
	}

	return incentives, nil
}

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArea(t area.Type, row rowScanner) (*area.Area, error) {
	var a area.Area
	var lat, lng, radius float64
	var polygonJSON []byte
	var spaceID, groupID, requestedBy *string

	dest := []interface{}{
		&a.ID, &a.FromUserID, &a.Message, &a.NotificationMsg, &a.HashTags, &a.Category,
		&a.MediaIDs, &a.IsPublic, &a.IsDraft, &a.IsMatureContent, &a.Region, &a.MaxViews,
		&lat, &lng, &radius, &polygonJSON, &a.CreatedAt, &a.UpdatedAt,
	}

	switch t {
	case area.TypeEvent:
		dest = append(dest, &a.ScheduleStartAt, &a.ScheduleStopAt, &spaceID, &groupID)
	case area.TypeSpace:
		dest = append(dest, &a.IsClaimPending, &requestedBy)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	a.Type = t
	if spaceID != nil {
		a.SpaceID = *spaceID
	}
	if groupID != nil {
		a.GroupID = *groupID
	}
	if requestedBy != nil {
		a.RequestedByUserID = *requestedBy
	}

	g, err := unmarshalGeometry(lat, lng, radius, polygonJSON)
	if err != nil {
		return nil, err
	}
	a.Geometry = g

	return &a, nil
}

func collectAreas(t area.Type, rows pgx.Rows) ([]area.Area, error) {
	defer rows.Close()

	var areas []area.Area
	for rows.Next() {
		a, err := scanArea(t, rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", t, err)
		}
		areas = append(areas, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", t, err)
	}

	return areas, nil
}

func marshalPolygon(g geo.Geometry) ([]byte, error) {
	if g.IsCircle() {
		return []byte("[]"), nil
	}
	data, err := json.Marshal(g.Polygon)
	if err != nil {
		return nil, fmt.Errorf("error marshaling polygon coords: %w", err)
	}
	return data, nil
}

func unmarshalGeometry(lat, lng, radius float64, polygonJSON []byte) (geo.Geometry, error) {
	var polygon []geo.Point
	if len(polygonJSON) > 0 {
		if err := json.Unmarshal(polygonJSON, &polygon); err != nil {
			return geo.Geometry{}, fmt.Errorf("error unmarshaling polygon coords: %w", err)
		}
	}
	if len(polygon) > 0 {
		return geo.PolygonGeometry(polygon), nil
	}
	return geo.CircleGeometry(lat, lng, radius), nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
