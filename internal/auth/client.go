// Package auth exchanges client credentials for a bearer token and
// resolves the organization the token belongs to. It is a thin typed
// client over the connect service; token lifecycle (refresh, expiry)
// stays with the service.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/adoptai/zapi/internal/domain"
)

const (
	defaultTokenBaseURL = "https://connect.adopt.ai"
	defaultAPIBaseURL   = "https://api.adopt.ai"
)

// Client talks to the connect and discovery API endpoints.
type Client struct {
	tokenBaseURL string
	apiBaseURL   string
	httpClient   *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithTokenBaseURL overrides the token exchange endpoint base.
func WithTokenBaseURL(u string) Option {
	return func(c *Client) { c.tokenBaseURL = u }
}

// WithAPIBaseURL overrides the discovery API endpoint base.
func WithAPIBaseURL(u string) Option {
	return func(c *Client) { c.apiBaseURL = u }
}

// WithHTTPClient sets a custom HTTP client (used by tests to install a
// recorder transport).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client with the default endpoints.
func New(opts ...Option) *Client {
	c := &Client{
		tokenBaseURL: defaultTokenBaseURL,
		apiBaseURL:   defaultAPIBaseURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session is an authenticated session: the bearer token and the
// organization it resolves to.
type Session struct {
	Token string
	OrgID string
}

// Authenticate performs the full handshake: token exchange, then token
// validation to extract the organization ID.
func (c *Client) Authenticate(ctx context.Context, clientID, secret string) (*Session, error) {
	if clientID == "" {
		return nil, domain.NewError(domain.KindAuthentication, "client ID cannot be empty")
	}
	if secret == "" {
		return nil, domain.NewError(domain.KindAuthentication, "secret cannot be empty")
	}

	token, err := c.FetchToken(ctx, clientID, secret)
	if err != nil {
		return nil, err
	}

	orgID, err := c.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, OrgID: orgID}, nil
}

// FetchToken exchanges client credentials for a bearer token.
func (c *Client) FetchToken(ctx context.Context, clientID, secret string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"clientId": clientID,
		"secret":   secret,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.tokenBaseURL+"/v1/auth/token", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.WrapError(domain.KindAuthentication, "token request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.WrapError(domain.KindAuthentication, "reading token response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", domain.NewError(domain.KindAuthentication,
			fmt.Sprintf("token exchange failed: HTTP %d", resp.StatusCode))
	}

	// The service has returned both shapes over time.
	var tokenResp struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", domain.WrapError(domain.KindAuthentication, "decoding token response", err)
	}

	switch {
	case tokenResp.Token != "":
		return tokenResp.Token, nil
	case tokenResp.AccessToken != "":
		return tokenResp.AccessToken, nil
	default:
		return "", domain.NewError(domain.KindAuthentication, "token response contains no token")
	}
}

// ValidateToken checks the token against the discovery API and returns
// the organization ID it carries.
func (c *Client) ValidateToken(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiBaseURL+"/v1/users/validate-token", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.WrapError(domain.KindAuthentication, "token validation request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", domain.NewError(domain.KindAuthentication,
			fmt.Sprintf("token validation failed: HTTP %d", resp.StatusCode))
	}

	var result struct {
		Valid bool   `json:"valid"`
		OrgID string `json:"org_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", domain.WrapError(domain.KindAuthentication, "decoding validation response", err)
	}

	if !result.Valid {
		return "", domain.NewError(domain.KindAuthentication, "token rejected by validation")
	}
	if result.OrgID == "" {
		return "", domain.NewError(domain.KindAuthentication, "validation response carries no org_id")
	}

	return result.OrgID, nil
}
