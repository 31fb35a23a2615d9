package reward

import (
	"context"
	"time"

	"go.uber.org/zap"

	"waypost/internal/domain/area"
	"waypost/internal/domain/external"
	"waypost/internal/domain/reward"
)

// Coordinator claims one-time incentives attached to a space. A claim walks
// NotEligible → Claimable → Claimed: eligibility is checked against the
// incentive rules and the user's coupon, the ledger transfer runs, and the
// coupon increments atomically so the same (user, incentive) pair can never
// be paid past the cap.
type Coordinator struct {
	coupons reward.CouponStore
	users   external.UsersClient
	log     *zap.Logger
}

// NewCoordinator creates a new reward coordinator
func NewCoordinator(coupons reward.CouponStore, users external.UsersClient, log *zap.Logger) *Coordinator {
	return &Coordinator{
		coupons: coupons,
		users:   users,
		log:     log,
	}
}

// Claim attempts to reward actingUser for performing triggerKey at the
// space. Returns the coins rewarded (0 when not eligible). Only an
// insufficient-funds ledger rejection is surfaced as an error; every other
// ledger failure degrades to zero reward because content creation must not
// depend on the payments path.
func (c *Coordinator) Claim(ctx context.Context, rc external.RequestContext, space *area.Area, actingUserID, triggerKey string) (int, error) {
	if space == nil || actingUserID == "" || actingUserID == space.FromUserID {
		return 0, nil
	}

	incentive := matchIncentive(space.Incentives, triggerKey)
	if incentive == nil {
		return 0, nil
	}

	coupon, err := c.coupons.Get(ctx, incentive.ID, actingUserID)
	if err != nil {
		c.log.Warn("coupon lookup failed, skipping reward",
			zap.String("incentiveId", incentive.ID),
			zap.String("userId", actingUserID),
			zap.Error(err))
		return 0, nil
	}
	if coupon != nil && coupon.UseCount >= incentive.MaxUseCount {
		return 0, nil
	}

	c.log.Info("user attempting to claim reward",
		zap.String("spaceId", space.ID),
		zap.String("incentiveId", incentive.ID),
		zap.String("userId", actingUserID),
		zap.Int("amount", incentive.RewardValue))

	status, err := c.users.TransferCoins(ctx, rc, space.FromUserID, actingUserID, incentive.RewardValue)
	if err != nil {
		c.log.Warn("ledger transfer failed, continuing without reward",
			zap.String("incentiveId", incentive.ID),
			zap.Error(err))
		return 0, nil
	}
	if status != external.TransferSuccess {
		// The space owner can't fund the reward. Surfaced so the client can
		// offer to proceed without it.
		return 0, area.ErrInsufficientFunds
	}

	incremented, err := c.coupons.Increment(ctx, incentive.ID, actingUserID, incentive.Region, incentive.MaxUseCount)
	if err != nil || !incremented {
		// Coins moved but the coupon didn't. Flag for reconciliation rather
		// than failing a transfer that already happened.
		c.log.Error("coupon increment failed after successful transfer",
			zap.String("incentiveId", incentive.ID),
			zap.String("userId", actingUserID),
			zap.Bool("incremented", incremented),
			zap.Error(err))
	}

	return incentive.RewardValue, nil
}

// matchIncentive finds an active coin incentive for the trigger key.
func matchIncentive(incentives []area.Incentive, triggerKey string) *area.Incentive {
	now := time.Now()
	for i := range incentives {
		inc := &incentives[i]
		if inc.Key != triggerKey || inc.RewardKey != area.IncentiveRewardCoin || !inc.IsActive {
			continue
		}
		if inc.StartsAt != nil && now.Before(*inc.StartsAt) {
			continue
		}
		if inc.EndsAt != nil && now.After(*inc.EndsAt) {
			continue
		}
		return inc
	}
	return nil
}
