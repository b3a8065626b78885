package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"lodgebook/pkg/model"
)

// LodgeClient reads lodges and their availability periods from the lodge
// service. Missing resources are reported as (nil, nil).
type LodgeClient struct {
	httpClient *HttpClient
}

func NewLodgeClient(baseURL string, timeout time.Duration) *LodgeClient {
	return &LodgeClient{
		httpClient: NewHttpClient(baseURL, timeout),
	}
}

func (c *LodgeClient) GetLodgeByID(ctx context.Context, id string) (*model.Lodge, error) {
	path := "/api/v1/lodges/id/" + url.PathEscape(id)
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("lodge service call failed: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("lodge service returned status %d", resp.StatusCode)
	}

	var lodge model.Lodge
	if err := resp.DecodeJSON(&lodge); err != nil {
		return nil, fmt.Errorf("could not decode lodge response: %w", err)
	}
	return &lodge, nil
}

func (c *LodgeClient) GetAvailabilityPeriods(ctx context.Context, lodgeID string) ([]*model.LodgeAvailabilityPeriod, error) {
	path := "/api/v1/lodges/id/" + url.PathEscape(lodgeID) + "/availability"
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("lodge service call failed: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("lodge service returned status %d", resp.StatusCode)
	}

	var periods []*model.LodgeAvailabilityPeriod
	if err := resp.DecodeJSON(&periods); err != nil {
		return nil, fmt.Errorf("could not decode availability periods response: %w", err)
	}
	return periods, nil
}
