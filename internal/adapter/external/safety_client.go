package external

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// SafetyClient calls the media-safety screening service. It implements
// moderation.MediaScreener and is only ever invoked off the request path.
type SafetyClient struct {
	baseURL string
	client  *http.Client
}

// NewSafetyClient creates a new media safety client
func NewSafetyClient(baseURL string, timeout time.Duration) *SafetyClient {
	return &SafetyClient{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

// IsSafe reports whether every referenced media object is safe for work.
func (c *SafetyClient) IsSafe(ctx context.Context, mediaPaths []string) (bool, error) {
	if len(mediaPaths) == 0 {
		return true, nil
	}

	var out struct {
		IsSafeForWork bool `json:"isSafeForWork"`
	}

	err := doJSON(ctx, c.client, http.MethodPost,
		fmt.Sprintf("%s/moderation/check-media", c.baseURL),
		nil,
		map[string]interface{}{"mediaPaths": mediaPaths},
		&out,
	)
	if err != nil {
		return false, err
	}

	return out.IsSafeForWork, nil
}
