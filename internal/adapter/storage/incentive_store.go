package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"waypost/internal/domain/area"
	"waypost/internal/domain/reward"
)

// IncentiveStore persists space incentives and their per-user coupons.
type IncentiveStore struct {
	db *pgxpool.Pool
}

// NewIncentiveStore creates a new incentive store
func NewIncentiveStore(db *pgxpool.Pool) *IncentiveStore {
	return &IncentiveStore{
		db: db,
	}
}

// CreateForSpace inserts the incentive rules attached to a new space.
func (s *IncentiveStore) CreateForSpace(ctx context.Context, spaceID, region string, incentives []area.Incentive) ([]area.Incentive, error) {
	created := make([]area.Incentive, 0, len(incentives))

	for _, inc := range incentives {
		inc.ID = uuid.New().String()
		inc.SpaceID = spaceID
		if inc.Region == "" {
			inc.Region = region
		}
		if inc.MaxUseCount <= 0 {
			inc.MaxUseCount = 1
		}

		query := `
			INSERT INTO space_incentives (
				id, space_id, incentive_key, incentive_reward_key, incentive_reward_value,
				max_use_count, is_active, region, starts_at, ends_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`

		_, err := s.db.Exec(ctx, query,
			inc.ID, inc.SpaceID, inc.Key, inc.RewardKey, inc.RewardValue,
			inc.MaxUseCount, inc.IsActive, inc.Region, inc.StartsAt, inc.EndsAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error inserting space incentive: %w", err)
		}

		created = append(created, inc)
	}

	return created, nil
}

// Increment bumps the (incentive, user) coupon atomically. The conditional
// upsert is the whole anti-replay story: the increment only applies while the
// stored count is below the cap, so concurrent claims cannot exceed it.
func (s *IncentiveStore) Increment(ctx context.Context, incentiveID, userID, region string, maxUseCount int) (bool, error) {
	query := `
		INSERT INTO space_incentive_coupons (space_incentive_id, user_id, use_count, region)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (space_incentive_id, user_id) DO UPDATE
		SET use_count = space_incentive_coupons.use_count + 1,
			updated_at = now()
		WHERE space_incentive_coupons.use_count < $4
		RETURNING use_count
	`

	var useCount int
	err := s.db.QueryRow(ctx, query, incentiveID, userID, region, maxUseCount).Scan(&useCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Conflict row exists and is already at the cap.
			return false, nil
		}
		return false, fmt.Errorf("error incrementing coupon: %w", err)
	}

	return useCount <= maxUseCount, nil
}

// Get returns the coupon, or nil when the user has never claimed.
func (s *IncentiveStore) Get(ctx context.Context, incentiveID, userID string) (*reward.Coupon, error) {
	query := `
		SELECT space_incentive_id, user_id, use_count, region, created_at, updated_at
		FROM space_incentive_coupons
		WHERE space_incentive_id = $1 AND user_id = $2
	`

	var c reward.Coupon
	err := s.db.QueryRow(ctx, query, incentiveID, userID).Scan(
		&c.SpaceIncentiveID,
		&c.UserID,
		&c.UseCount,
		&c.Region,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying coupon: %w", err)
	}

	return &c, nil
}
