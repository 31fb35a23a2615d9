package reward

import (
	"context"
	"time"
)

// Coupon is the per-user usage counter for one space incentive. UseCount
// never exceeds the incentive's MaxUseCount.
type Coupon struct {
	SpaceIncentiveID string    `json:"spaceIncentiveId"`
	UserID           string    `json:"userId"`
	UseCount         int       `json:"useCount"`
	Region           string    `json:"region"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// CouponStore persists coupons. Increment is the only mutation and must be
// atomic at the store level: insert-or-increment-on-conflict, conditioned on
// the cap, never read-then-write in application code.
type CouponStore interface {
	// Increment bumps the (incentive, user) coupon by one, creating it at
	// useCount=1 when absent. Returns false without mutating when the coupon
	// is already at maxUseCount.
	Increment(ctx context.Context, incentiveID, userID, region string, maxUseCount int) (bool, error)

	// Get returns the coupon, or nil when none exists yet.
	Get(ctx context.Context, incentiveID, userID string) (*Coupon, error)
}
