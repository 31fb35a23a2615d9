package external

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"waypost/internal/domain/external"
)

const insufficientFundsCode = "INSUFFICIENT_FUNDS"

// UsersClient talks to the identity/ledger service over HTTP.
type UsersClient struct {
	baseURL string
	client  *http.Client
}

// NewUsersClient creates a new users service client
func NewUsersClient(baseURL string, timeout time.Duration) *UsersClient {
	return &UsersClient{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

// FindUsers resolves identity summaries for a batch of user ids.
func (c *UsersClient) FindUsers(ctx context.Context, ids []string) ([]external.UserSummary, error) {
	var out struct {
		Users []external.UserSummary `json:"users"`
	}

	err := doJSON(ctx, c.client, http.MethodPost,
		fmt.Sprintf("%s/users/find", c.baseURL),
		nil,
		map[string]interface{}{"ids": ids},
		&out,
	)
	if err != nil {
		return nil, err
	}

	return out.Users, nil
}

// GetConnectionIDs returns ids of the caller's confirmed connections.
func (c *UsersClient) GetConnectionIDs(ctx context.Context, rc external.RequestContext) ([]string, error) {
	var out struct {
		Results []struct {
			Users []external.UserSummary `json:"users"`
		} `json:"results"`
	}

	err := doJSON(ctx, c.client, http.MethodGet,
		fmt.Sprintf("%s/users/connections?shouldCheckReverse=true", c.baseURL),
		&rc,
		nil,
		&out,
	)
	if err != nil {
		return nil, err
	}

	// Each connection row holds both parties; keep the one that isn't the caller.
	ids := make([]string, 0, len(out.Results))
	for _, conn := range out.Results {
		for _, u := range conn.Users {
			if u.ID != rc.UserID {
				ids = append(ids, u.ID)
			}
		}
	}

	return ids, nil
}

// TransferCoins moves coins through the ledger. An insufficient-funds
// rejection comes back as a status, not an error, so the caller can offer to
// proceed without the reward.
func (c *UsersClient) TransferCoins(ctx context.Context, rc external.RequestContext, fromUserID, toUserID string, amount int) (external.TransferStatus, error) {
	var out struct {
		TransactionStatus string `json:"transactionStatus"`
	}

	err := doJSON(ctx, c.client, http.MethodPost,
		fmt.Sprintf("%s/rewards/transfer-coins", c.baseURL),
		&rc,
		map[string]interface{}{
			"fromUserId": fromUserID,
			"toUserId":   toUserID,
			"amount":     amount,
		},
		&out,
	)
	if err != nil {
		var svcErr *errResponse
		if errors.As(err, &svcErr) && svcErr.ErrorCode == insufficientFundsCode {
			return external.TransferInsufficientFunds, nil
		}
		return "", err
	}

	return external.TransferStatus(out.TransactionStatus), nil
}
