// Package external implements HTTP clients for the collaborator services.
// All calls carry short timeouts and no in-request retries; degradation on
// failure is the caller's decision.
package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"waypost/internal/domain/area"
	"waypost/internal/domain/external"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
		},
	}
}

// doJSON performs a JSON request/response round trip. Non-2xx responses are
// returned as errResponse so callers can branch on structured error codes.
func doJSON(ctx context.Context, client *http.Client, method, url string, rc *external.RequestContext, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error marshaling request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("error building request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if rc != nil {
		if rc.Authorization != "" {
			req.Header.Set("Authorization", rc.Authorization)
		}
		if rc.UserID != "" {
			req.Header.Set("x-userid", rc.UserID)
		}
		if rc.Locale != "" {
			req.Header.Set("x-localecode", rc.Locale)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return area.UpstreamError("service request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return area.UpstreamError("error reading service response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody errResponse
		_ = json.Unmarshal(data, &errBody)
		errBody.StatusCode = resp.StatusCode
		return &errBody
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return area.UpstreamError("error decoding service response", err)
		}
	}

	return nil
}

// errResponse is the structured error shape collaborator services return.
type errResponse struct {
	StatusCode int    `json:"-"`
	ErrorCode  string `json:"errorCode"`
	Message    string `json:"message"`
}

func (e *errResponse) Error() string {
	return fmt.Sprintf("service responded %d (%s): %s", e.StatusCode, e.ErrorCode, e.Message)
}
