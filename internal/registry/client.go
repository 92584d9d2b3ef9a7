// Package registry is the HTTP client for the host's building-asset
// registry, the external system of record for asset metadata.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Asset struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Building      string `json:"building"`
	EquipmentType string `json:"equipment_type,omitempty"`
	Status        string `json:"status"` // in_service, standby, decommissioned
}

type Client interface {
	GetAsset(ctx context.Context, assetID string) (*Asset, error)
	ListAssets(ctx context.Context) ([]Asset, error)
}

type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) doReq(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("registry %s %s: %d %s", method, path, resp.StatusCode, string(body))
	}
	return body, nil
}

func (c *HTTPClient) GetAsset(ctx context.Context, assetID string) (*Asset, error) {
	data, err := c.doReq(ctx, "GET", "/api/v1/assets/"+assetID)
	if err != nil {
		return nil, err
	}
	var asset Asset
	if err := json.Unmarshal(data, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

func (c *HTTPClient) ListAssets(ctx context.Context) ([]Asset, error) {
	data, err := c.doReq(ctx, "GET", "/api/v1/assets")
	if err != nil {
		return nil, err
	}
	var assets []Asset
	if err := json.Unmarshal(data, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}
