package area

import (
	"time"

	"waypost/internal/domain/geo"
)

// Type discriminates the three area kinds. Values double as route prefixes
// and table names.
type Type string

const (
	TypeMoment Type = "moments"
	TypeSpace  Type = "spaces"
	TypeEvent  Type = "events"
)

// Valid reports whether t is one of the known area kinds.
func (t Type) Valid() bool {
	return t == TypeMoment || t == TypeSpace || t == TypeEvent
}

// Incentive trigger and reward keys.
const (
	IncentiveKeyShareMoment = "SHARE_A_MOMENT"
	IncentiveKeyHostEvent   = "HOST_EVENT"
	IncentiveKeyCheckIn     = "SPACE_CHECK_IN"

	IncentiveRewardCoin = "COIN_REWARD"
)

// Incentive is a reward rule attached to a Space: a user who performs the
// action named by Key at the space may receive RewardValue coins, at most
// MaxUseCount times.
type Incentive struct {
	ID          string     `json:"id"`
	SpaceID     string     `json:"spaceId"`
	Key         string     `json:"incentiveKey"`
	RewardKey   string     `json:"incentiveRewardKey"`
	RewardValue int        `json:"incentiveRewardValue"`
	MaxUseCount int        `json:"maxUseCount"`
	IsActive    bool       `json:"isActive"`
	Region      string     `json:"region"`
	StartsAt    *time.Time `json:"startsAt,omitempty"`
	EndsAt      *time.Time `json:"endsAt,omitempty"`
}

// Media is a stored media record referenced by an area through MediaIDs.
type Media struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"fromUserId"`
	Type       string    `json:"type"`
	Path       string    `json:"path"`
	AltText    string    `json:"altText"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Area is a geolocated content record. The three kinds share one shape;
// kind-specific fields are zero-valued for the other kinds.
type Area struct {
	ID              string       `json:"id"`
	Type            Type         `json:"areaType"`
	FromUserID      string       `json:"fromUserId"`
	Message         string       `json:"message"`
	NotificationMsg string       `json:"notificationMsg"`
	HashTags        string       `json:"hashTags"`
	Category        string       `json:"category"`
	MediaIDs        string       `json:"mediaIds"`
	IsPublic        bool         `json:"isPublic"`
	IsDraft         bool         `json:"isDraft"`
	IsMatureContent bool         `json:"isMatureContent"`
	Region          string       `json:"region"`
	Geometry        geo.Geometry `json:"geometry"`
	MaxViews        int          `json:"maxViews"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`

	// Event-only fields.
	ScheduleStartAt *time.Time `json:"scheduleStartAt,omitempty"`
	ScheduleStopAt  *time.Time `json:"scheduleStopAt,omitempty"`
	SpaceID         string     `json:"spaceId,omitempty"`
	GroupID         string     `json:"groupId,omitempty"`

	// Space-only fields.
	Incentives        []Incentive `json:"incentives,omitempty"`
	IsClaimPending    bool        `json:"isClaimPending,omitempty"`
	RequestedByUserID string      `json:"requestedByUserId,omitempty"`
}

// MediaParams is an inline media attachment accepted at creation, normalized
// into a stored Media record before the area row is written.
type MediaParams struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// CreateParams carries everything a caller may supply when creating an area.
type CreateParams struct {
	Type            Type          `json:"areaType"`
	FromUserID      string        `json:"-"`
	Message         string        `json:"message"`
	NotificationMsg string        `json:"notificationMsg"`
	HashTags        string        `json:"hashTags"`
	Category        string        `json:"category"`
	IsPublic        bool          `json:"isPublic"`
	IsDraft         bool          `json:"isDraft"`
	Geometry        geo.Geometry  `json:"geometry"`
	MediaIDs        string        `json:"mediaIds"`
	Media           []MediaParams `json:"media"`
	MaxViews        int           `json:"maxViews"`
	SkipReward      bool          `json:"skipReward"`

	ScheduleStartAt *time.Time `json:"scheduleStartAt"`
	ScheduleStopAt  *time.Time `json:"scheduleStopAt"`
	SpaceID         string     `json:"spaceId"`
	GroupID         string     `json:"groupId"`

	Incentives []Incentive `json:"incentives"`
}

// UpdateParams carries a partial update. Nil fields are left untouched.
// Geometry is immutable after creation and deliberately absent here.
type UpdateParams struct {
	Message           *string    `json:"message"`
	NotificationMsg   *string    `json:"notificationMsg"`
	HashTags          *string    `json:"hashTags"`
	Category          *string    `json:"category"`
	IsPublic          *bool      `json:"isPublic"`
	IsDraft           *bool      `json:"isDraft"`
	IsMatureContent   *bool      `json:"-"`
	MediaIDs          *string    `json:"mediaIds"`
	ScheduleStartAt   *time.Time `json:"scheduleStartAt"`
	ScheduleStopAt    *time.Time `json:"scheduleStopAt"`
	IsClaimPending    *bool      `json:"-"`
	RequestedByUserID *string    `json:"-"`
}

// Pagination reports page size and number only; totals are omitted because
// exact counts over proximity queries are too slow to be worth it.
type Pagination struct {
	ItemsPerPage int `json:"itemsPerPage"`
	PageNumber   int `json:"pageNumber"`
}

// Normalize applies defaults and hard limits.
func (p Pagination) Normalize() Pagination {
	if p.ItemsPerPage <= 0 {
		p.ItemsPerPage = 20
	}
	if p.ItemsPerPage > 100 {
		p.ItemsPerPage = 100
	}
	if p.PageNumber <= 0 {
		p.PageNumber = 1
	}
	return p
}

// Offset returns the row offset for the page.
func (p Pagination) Offset() int {
	return p.ItemsPerPage * (p.PageNumber - 1)
}

// SearchFilters composes the proximity search predicate. Text filters match
// exactly unless Partial is set, in which case a case-insensitive substring
// match is used.
type SearchFilters struct {
	Center          geo.Point
	ProximityMeters float64
	FilterBy        string
	Query           string
	Partial         bool
	FromUserIDs     []string
	IncludePublic   bool
	ClaimPendingOK  bool
}

// MineFilters scopes a search to the caller's own rows.
type MineFilters struct {
	FromUserID string
	DraftsOnly bool
	PublicOnly bool
	FilterBy   string
	Query      string
	Partial    bool
}

// FindFilters tunes a batch fetch by ids.
type FindFilters struct {
	Limit      int
	Order      string
	Before     *time.Time
	HideMature bool
}

// EnrichOptions opt a detail fetch into media/user joins. Both must be set
// for the assembled result to be cache-eligible.
type EnrichOptions struct {
	WithMedia bool `json:"withMedia"`
	WithUser  bool `json:"withUser"`
}

// CacheEligible reports whether a response assembled under these options may
// be written to the edge cache. Partial views are never cached.
func (o EnrichOptions) CacheEligible() bool {
	return o.WithMedia && o.WithUser
}

// CheckIn records a user visiting a space.
type CheckIn struct {
	ID        string    `json:"id"`
	SpaceID   string    `json:"spaceId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
