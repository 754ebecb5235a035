package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rtn-loyalty-tier3/models"
)

// StaticTokenProvider serves a fixed bearer token from configuration.
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider creates a new StaticTokenProvider.
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

// Ensure StaticTokenProvider implements TokenProviderInterface
var _ TokenProviderInterface = (*StaticTokenProvider)(nil)

// Token returns the configured bearer token.
func (p *StaticTokenProvider) Token(ctx context.Context) (string, error) {
	if p.token == "" {
		return "", fmt.Errorf("catalog api token is not configured")
	}
	return p.token, nil
}

// ManufacturerAPIClient fetches the SKU catalog and allowance rules from the
// manufacturer's HTTP API
type ManufacturerAPIClient struct {
	baseURL string
	tokens  TokenProviderInterface
	client  *http.Client
}

// NewManufacturerAPIClient creates a new ManufacturerAPIClient.
func NewManufacturerAPIClient(baseURL string, tokens TokenProviderInterface) *ManufacturerAPIClient {
	return &ManufacturerAPIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Ensure ManufacturerAPIClient implements ManufacturerAPIClientInterface
var _ ManufacturerAPIClientInterface = (*ManufacturerAPIClient)(nil)

// FetchSKUs returns the full tobacco SKU catalog.
func (c *ManufacturerAPIClient) FetchSKUs(ctx context.Context) ([]models.FeedSKU, error) {
	var payload struct {
		SKUs []models.FeedSKU `json:"skus"`
	}
	if err := c.getJSON(ctx, "/v1/catalog/skus", &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch skus: %w", err)
	}
	return payload.SKUs, nil
}

// FetchAllowances returns the current allowance rules with their SKU links.
func (c *ManufacturerAPIClient) FetchAllowances(ctx context.Context) ([]models.FeedAllowance, error) {
	var payload struct {
		Allowances []models.FeedAllowance `json:"allowances"`
	}
	if err := c.getJSON(ctx, "/v1/catalog/allowances", &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch allowances: %w", err)
	}
	return payload.Allowances, nil
}

// getJSON performs an authenticated GET and decodes the JSON body into out.
func (c *ManufacturerAPIClient) getJSON(ctx context.Context, path string, out interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("catalog api base url is not configured")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain api token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call catalog api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("catalog api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode catalog api response: %w", err)
	}
	return nil
}
