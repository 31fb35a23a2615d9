package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"waypost/internal/domain/area"
)

// MediaStore persists the media records areas reference through mediaIds.
type MediaStore struct {
	db *pgxpool.Pool
}

// NewMediaStore creates a new media store
func NewMediaStore(db *pgxpool.Pool) *MediaStore {
	return &MediaStore{
		db: db,
	}
}

// Create inserts media records and returns their ids in input order.
func (s *MediaStore) Create(ctx context.Context, media []area.Media) ([]string, error) {
	ids := make([]string, 0, len(media))

	for _, m := range media {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now().UTC()
		}

		query := `
			INSERT INTO media (id, from_user_id, type, path, alt_text, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`

		if _, err := s.db.Exec(ctx, query,
			m.ID, m.FromUserID, m.Type, m.Path, m.AltText, m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error inserting media: %w", err)
		}

		ids = append(ids, m.ID)
	}

	return ids, nil
}

// GetByIDs fetches media records for a batch of ids.
func (s *MediaStore) GetByIDs(ctx context.Context, ids []string) ([]area.Media, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, from_user_id, type, path, alt_text, created_at
		FROM media
		WHERE id = ANY($1)
	`

	rows, err := s.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("error querying media: %w", err)
	}
	defer rows.Close()

	var media []area.Media
	for rows.Next() {
		var m area.Media
		if err := rows.Scan(&m.ID, &m.FromUserID, &m.Type, &m.Path, &m.AltText, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning media: %w", err)
		}
		media = append(media, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media: %w", err)
	}

	return media, nil
}
