package external

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// MediaClient resolves media ids into temporary signed URLs.
type MediaClient struct {
	baseURL string
	client  *http.Client
}

// NewMediaClient creates a new media service client
func NewMediaClient(baseURL string, timeout time.Duration) *MediaClient {
	return &MediaClient{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

// ResolveSignedURLs exchanges media ids for time-limited URLs.
func (c *MediaClient) ResolveSignedURLs(ctx context.Context, mediaIDs []string) (map[string]string, error) {
	if len(mediaIDs) == 0 {
		return map[string]string{}, nil
	}

	var out struct {
		URLs map[string]string `json:"urls"`
	}

	err := doJSON(ctx, c.client, http.MethodPost,
		fmt.Sprintf("%s/media/signed-urls", c.baseURL),
		nil,
		map[string]interface{}{"mediaIds": mediaIDs},
		&out,
	)
	if err != nil {
		return nil, err
	}

	return out.URLs, nil
}
