// Package external declares the contracts for collaborator services. Only
// the interfaces live here; HTTP implementations are adapters.
package external

import "context"

// RequestContext carries the identity headers forwarded to collaborators.
type RequestContext struct {
	UserID        string
	Authorization string
	Locale        string
}

// UserSummary is the owner identity joined into enriched reads.
type UserSummary struct {
	ID        string `json:"id"`
	UserName  string `json:"userName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Media     string `json:"media,omitempty"`
}

// TransferStatus is the ledger's verdict on a coin transfer.
type TransferStatus string

const (
	TransferSuccess           TransferStatus = "success"
	TransferInsufficientFunds TransferStatus = "insufficient-funds"
)

// UsersClient talks to the identity/ledger service.
type UsersClient interface {
	// FindUsers resolves identity summaries for a set of user ids.
	FindUsers(ctx context.Context, ids []string) ([]UserSummary, error)

	// GetConnectionIDs returns the ids of users connected to the caller,
	// used by the "connections" search scope.
	GetConnectionIDs(ctx context.Context, rc RequestContext) ([]string, error)

	// TransferCoins moves coins between users through the ledger.
	TransferCoins(ctx context.Context, rc RequestContext, fromUserID, toUserID string, amount int) (TransferStatus, error)
}

// ReactionsClient talks to the reactions/engagement service.
type ReactionsClient interface {
	// HasActivated reports whether the user has activated (unlocked) the area.
	HasActivated(ctx context.Context, rc RequestContext, areaType, areaID string) (bool, error)

	// CreateReaction records the owner's companion reaction for a new area.
	CreateReaction(ctx context.Context, rc RequestContext, areaType, areaID string) error
}

// MediaClient resolves media ids to temporary signed URLs.
type MediaClient interface {
	ResolveSignedURLs(ctx context.Context, mediaIDs []string) (map[string]string, error)
}
