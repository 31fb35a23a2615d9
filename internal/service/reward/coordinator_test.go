package reward

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"waypost/internal/domain/area"
	"waypost/internal/domain/external"
	"waypost/internal/domain/reward"
)

type fakeCouponStore struct {
	counts       map[string]int
	getErr       error
	incrementErr error
	increments   int
}

func newFakeCouponStore() *fakeCouponStore {
	return &fakeCouponStore{counts: map[string]int{}}
}

func (f *fakeCouponStore) key(incentiveID, userID string) string {
	return incentiveID + ":" + userID
}

func (f *fakeCouponStore) Get(_ context.Context, incentiveID, userID string) (*reward.Coupon, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	count, ok := f.counts[f.key(incentiveID, userID)]
	if !ok {
		return nil, nil
	}
	return &reward.Coupon{SpaceIncentiveID: incentiveID, UserID: userID, UseCount: count}, nil
}

func (f *fakeCouponStore) Increment(_ context.Context, incentiveID, userID, _ string, maxUseCount int) (bool, error) {
	if f.incrementErr != nil {
		return false, f.incrementErr
	}
	k := f.key(incentiveID, userID)
	if f.counts[k] >= maxUseCount {
		return false, nil
	}
	f.counts[k]++
	f.increments++
	return true, nil
}

type fakeLedger struct {
	status    external.TransferStatus
	err       error
	transfers int
}

func (f *fakeLedger) FindUsers(context.Context, []string) ([]external.UserSummary, error) {
	return nil, nil
}

func (f *fakeLedger) GetConnectionIDs(context.Context, external.RequestContext) ([]string, error) {
	return nil, nil
}

func (f *fakeLedger) TransferCoins(_ context.Context, _ external.RequestContext, _, _ string, _ int) (external.TransferStatus, error) {
	f.transfers++
	if f.err != nil {
		return "", f.err
	}
	return f.status, nil
}

func testSpace(incentives ...area.Incentive) *area.Area {
	return &area.Area{
		ID:         "space-1",
		Type:       area.TypeSpace,
		FromUserID: "owner",
		Incentives: incentives,
	}
}

func checkInIncentive(maxUse int) area.Incentive {
	return area.Incentive{
		ID:          "inc-1",
		SpaceID:     "space-1",
		Key:         area.IncentiveKeyCheckIn,
		RewardKey:   area.IncentiveRewardCoin,
		RewardValue: 10,
		MaxUseCount: maxUse,
		IsActive:    true,
	}
}

func TestClaimOwnSpaceNotEligible(t *testing.T) {
	coupons := newFakeCouponStore()
	ledger := &fakeLedger{status: external.TransferSuccess}
	c := NewCoordinator(coupons, ledger, zap.NewNop())

	coins, err := c.Claim(context.Background(), external.RequestContext{}, testSpace(checkInIncentive(1)), "owner", area.IncentiveKeyCheckIn)

	require.NoError(t, err)
	assert.Zero(t, coins)
	assert.Zero(t, ledger.transfers)
}

func TestClaimNoMatchingIncentive(t *testing.T) {
	coupons := newFakeCouponStore()
	ledger := &fakeLedger{status: external.TransferSuccess}
	c := NewCoordinator(coupons, ledger, zap.NewNop())

	coins, err := c.Claim(context.Background(), external.RequestContext{}, testSpace(checkInIncentive(1)), "visitor", area.IncentiveKeyHostEvent)

	require.NoError(t, err)
	assert.Zero(t, coins)
	assert.Zero(t, ledger.transfers)
}

func TestClaimInactiveIncentiveNotEligible(t *testing.T) {
	inc := checkInIncentive(1)
	inc.IsActive = false

	c := NewCoordinator(newFakeCouponStore(), &fakeLedger{status: external.TransferSuccess}, zap.NewNop())
	coins, err := c.Claim(context.Background(), external.RequestContext{}, testSpace(inc), "visitor", area.IncentiveKeyCheckIn)

	require.NoError(t, err)
	assert.Zero(t, coins)
}

func TestClaimExpiredIncentiveNotEligible(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	inc := checkInIncentive(1)
	inc.EndsAt = &past

	c := NewCoordinator(newFakeCouponStore(), &fakeLedger{status: external.TransferSuccess}, zap.NewNop())
	coins, err := c.Claim(context.Background(), external.RequestContext{}, testSpace(inc), "visitor", area.IncentiveKeyCheckIn)

	require.NoError(t, err)
	assert.Zero(t, coins)
}

func TestClaimSuccess(t *testing.T) {
	coupons := newFakeCouponStore()
	ledger := &fakeLedger{status: external.TransferSuccess}
	c := NewCoordinator(coupons, ledger, zap.NewNop())

	coins, err := c.Claim(context.Background(), external.RequestContext{}, testSpace(checkInIncentive(2)), "visitor", area.IncentiveKeyCheckIn)

	require.NoError(t, err)
	assert.Equal(t, 10, coins)
	assert.Equal(t, 1, ledger.transfers)
	assert.Equal(t, 1, coupons.counts["inc-1:visitor"])
}

func TestClaimCouponCapEnforced(t *testing.T) {
	coupons := newFakeCouponStore()
	ledger := &fakeLedger{status: external.TransferSuccess}
	c := NewCoordinator(coupons, ledger, zap.NewNop())
	space := testSpace(checkInIncentive(2))

	for i := 0; i < 5; i++ {
		_, err := c.Claim(context.Background(), external.RequestContext{}, space, "visitor", area.IncentiveKeyCheckIn)
		require.NoError(t, err)
	}

	// Transfers stop once the coupon is exhausted.
	assert.Equal(t, 2, ledger.transfers)
	assert.Equal(t, 2, coupons.counts["inc-1:visitor"])
}

func TestClaimInsufficientFundsSurfaced(t *testing.T) {
	coupons := newFakeCouponStore()
	ledger := &fakeLedger{status: external.TransferInsufficientFunds}
	c := NewCoordinator(coupons, ledger, zap.NewNop())

	coins, err := c.Claim(context.Background(), external.RequestContext{}, testSpace(checkInIncentive(1)), "visitor", area.IncentiveKeyCheckIn)

	assert.ErrorIs(t, err, area.ErrInsufficientFunds)
	assert.Zero(t, coins)
	// No coupon is burned for a failed transfer.
	assert.Zero(t, coupons.increments)
}

func TestClaimLedgerFailureSoft(t *testing.T) {
	coupons := newFakeCouponStore()
	ledger := &fakeLedger{err: errors.New("connection refused")}
	c := NewCoordinator(coupons, ledger, zap.NewNop())

	coins, err := c.Claim(context.Background(), external.RequestContext{}, testSpace(checkInIncentive(1)), "visitor", area.IncentiveKeyCheckIn)

	require.NoError(t, err)
	assert.Zero(t, coins)
}

func TestClaimCouponLookupFailureSoft(t *testing.T) {
	coupons := newFakeCouponStore()
	coupons.getErr = errors.New("db down")
	ledger := &fakeLedger{status: external.TransferSuccess}
	c := NewCoordinator(coupons, ledger, zap.NewNop())

	coins, err := c.Claim(context.Background(), external.RequestContext{}, testSpace(checkInIncentive(1)), "visitor", area.IncentiveKeyCheckIn)

	require.NoError(t, err)
	assert.Zero(t, coins)
	assert.Zero(t, ledger.transfers)
}

func TestClaimIncrementFailureStillRewards(t *testing.T) {
	coupons := newFakeCouponStore()
	coupons.incrementErr = errors.New("db down")
	ledger := &fakeLedger{status: external.TransferSuccess}
	c := NewCoordinator(coupons, ledger, zap.NewNop())

	// Coins already moved; the claim reports the reward and the gap is left
	// to reconciliation.
	coins, err := c.Claim(context.Background(), external.RequestContext{}, testSpace(checkInIncentive(1)), "visitor", area.IncentiveKeyCheckIn)

	require.NoError(t, err)
	assert.Equal(t, 10, coins)
}
