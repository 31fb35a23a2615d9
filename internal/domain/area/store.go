package area

import (
	"context"

	"waypost/internal/domain/geo"
)

// Store is the authoritative persistence layer for areas.
type Store interface {
	// IsDuplicate reports whether an identical (fromUserId, message,
	// notificationMsg) row already exists for the kind. Guards against
	// client retry storms creating visible duplicates.
	IsDuplicate(ctx context.Context, t Type, fromUserID, message, notificationMsg string) (bool, error)

	// SpaceOverlaps reports whether the geometry shares interior area with
	// any existing space.
	SpaceOverlaps(ctx context.Context, g geo.Geometry) (bool, error)

	// Insert persists a fully derived area. A concurrent space overlap
	// surfaces as ErrOverlapConflict.
	Insert(ctx context.Context, a *Area) (*Area, error)

	// GetByID fetches one area; spaces come back with their incentives.
	GetByID(ctx context.Context, t Type, id string) (*Area, error)

	// Update applies a partial, owner-scoped update. ErrNotFound when no row
	// matches (id, fromUserID).
	Update(ctx context.Context, t Type, id, fromUserID string, params UpdateParams) (*Area, error)

	// SetModerationFlags flips the mature/public pair together, bypassing
	// owner scoping. Used by the async media verdict follow-up only.
	SetModerationFlags(ctx context.Context, t Type, id string, isMature, isPublic bool) error

	// Search runs the composed proximity query, ordered by insertion recency.
	Search(ctx context.Context, t Type, f SearchFilters, p Pagination) ([]Area, error)

	// SearchMine lists only the caller's own rows.
	SearchMine(ctx context.Context, t Type, f MineFilters, p Pagination) ([]Area, error)

	// FindByIDs batch-fetches areas without enrichment.
	FindByIDs(ctx context.Context, t Type, ids []string, f FindFilters) ([]Area, error)

	// Delete hard-deletes the caller's rows and returns them. Deleting a
	// space cascades to its events in the same operation.
	Delete(ctx context.Context, t Type, fromUserID string, ids []string) ([]Area, error)
}

// MediaStore persists normalized media records.
type MediaStore interface {
	Create(ctx context.Context, media []Media) ([]string, error)
	GetByIDs(ctx context.Context, ids []string) ([]Media, error)
}

// CheckInStore records space visits.
type CheckInStore interface {
	Record(ctx context.Context, spaceID, userID string) (*CheckIn, error)
}

// Invalidator removes an edge-cache entry for an area. Mutation handlers
// depend on this interface so tests can substitute a recording fake.
type Invalidator interface {
	Invalidate(ctx context.Context, t Type, id string)
}

// Lifecycle event names passed to Publisher.Publish.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Publisher emits best-effort lifecycle events for downstream consumers.
type Publisher interface {
	Publish(event string, a *Area)
}
