package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"waypost/internal/domain/area"
)

// CheckInStore records space visits.
type CheckInStore struct {
	db *pgxpool.Pool
}

// NewCheckInStore creates a new check-in store
func NewCheckInStore(db *pgxpool.Pool) *CheckInStore {
	return &CheckInStore{
		db: db,
	}
}

// Record inserts a check-in row for the visit.
func (s *CheckInStore) Record(ctx context.Context, spaceID, userID string) (*area.CheckIn, error) {
	checkIn := &area.CheckIn{
		ID:        uuid.New().String(),
		SpaceID:   spaceID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO space_checkins (id, space_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := s.db.Exec(ctx, query,
		checkIn.ID, checkIn.SpaceID, checkIn.UserID, checkIn.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("error inserting check-in: %w", err)
	}

	return checkIn, nil
}
