package external

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"waypost/internal/domain/external"
)

// ReactionsClient talks to the reactions/engagement service over HTTP.
type ReactionsClient struct {
	baseURL string
	client  *http.Client
}

// NewReactionsClient creates a new reactions service client
func NewReactionsClient(baseURL string, timeout time.Duration) *ReactionsClient {
	return &ReactionsClient{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

// reactionPath maps the plural area type to the service's singular route.
func reactionPath(areaType string) string {
	return strings.TrimSuffix(areaType, "s") + "-reactions"
}

// HasActivated reports whether the user has activated (unlocked) the area.
func (c *ReactionsClient) HasActivated(ctx context.Context, rc external.RequestContext, areaType, areaID string) (bool, error) {
	var out struct {
		UserHasActivated bool `json:"userHasActivated"`
	}

	err := doJSON(ctx, c.client, http.MethodGet,
		fmt.Sprintf("%s/%s/%s", c.baseURL, reactionPath(areaType), areaID),
		&rc,
		nil,
		&out,
	)
	if err != nil {
		return false, err
	}

	return out.UserHasActivated, nil
}

// CreateReaction records the owner's companion reaction for a new area.
func (c *ReactionsClient) CreateReaction(ctx context.Context, rc external.RequestContext, areaType, areaID string) error {
	return doJSON(ctx, c.client, http.MethodPost,
		fmt.Sprintf("%s/%s/%s", c.baseURL, reactionPath(areaType), areaID),
		&rc,
		map[string]interface{}{"userHasActivated": true},
		nil,
	)
}
