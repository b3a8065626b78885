package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"lodgebook/pkg/model"
)

// UserClient reads user records from the user service. A missing user is
// reported as (nil, nil); callers decide whether that is an error.
type UserClient struct {
	httpClient *HttpClient
}

func NewUserClient(baseURL string, timeout time.Duration) *UserClient {
	return &UserClient{
		httpClient: NewHttpClient(baseURL, timeout),
	}
}

func (c *UserClient) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	path := "/api/v1/users/id/" + url.PathEscape(id)
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("user service call failed: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("user service returned status %d", resp.StatusCode)
	}

	var user model.User
	if err := resp.DecodeJSON(&user); err != nil {
		return nil, fmt.Errorf("could not decode user response: %w", err)
	}
	return &user, nil
}
