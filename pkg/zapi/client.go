package zapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"

	"github.com/adoptai/zapi/internal/auth"
	"github.com/adoptai/zapi/internal/domain"
	"github.com/adoptai/zapi/internal/provider"
	"github.com/adoptai/zapi/internal/upload"
	"github.com/adoptai/zapi/internal/vault"
)

// Client is an authenticated session with the discovery service. It
// holds the organization identity resolved during the handshake and any
// BYOK credentials sealed for that organization.
type Client struct {
	cfg      *Config
	session  *auth.Session
	registry *provider.Registry
	vault    *vault.Vault
	uploader *upload.Uploader

	mu   sync.Mutex
	keys map[string]*domain.CredentialRecord
}

// ClientOption configures a Client before the handshake.
type ClientOption func(*clientSettings)

type clientSettings struct {
	cfg        *Config
	httpClient *http.Client
}

// WithClientConfig supplies the runtime configuration (connect URLs,
// vault master secret).
func WithClientConfig(cfg *Config) ClientOption {
	return func(s *clientSettings) { s.cfg = cfg }
}

// WithClientHTTP sets the HTTP client used for all service calls.
func WithClientHTTP(hc *http.Client) ClientOption {
	return func(s *clientSettings) { s.httpClient = hc }
}

// NewClient performs the connect handshake and returns a client bound
// to the resolved organization.
func NewClient(ctx context.Context, clientID, secret string, opts ...ClientOption) (*Client, error) {
	s := clientSettings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.cfg == nil {
		s.cfg = DefaultConfig()
	}

	authOpts := []auth.Option{
		auth.WithTokenBaseURL(s.cfg.Connect.TokenURL),
		auth.WithAPIBaseURL(s.cfg.Connect.APIURL),
	}
	uploadOpts := []upload.Option{
		upload.WithBaseURL(s.cfg.Connect.APIURL),
	}
	if s.httpClient != nil {
		authOpts = append(authOpts, auth.WithHTTPClient(s.httpClient))
		uploadOpts = append(uploadOpts, upload.WithHTTPClient(s.httpClient))
	}

	session, err := auth.New(authOpts...).Authenticate(ctx, clientID, secret)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:      s.cfg,
		session:  session,
		registry: provider.New(),
		uploader: upload.New(uploadOpts...),
		keys:     make(map[string]*domain.CredentialRecord),
	}

	if s.cfg.Vault.MasterSecret != "" {
		vaultOpts := []vault.Option{}
		if s.cfg.Vault.Iterations > 0 {
			vaultOpts = append(vaultOpts, vault.WithIterations(s.cfg.Vault.Iterations))
		}
		v, err := vault.New(s.cfg.Vault.MasterSecret, c.registry, vaultOpts...)
		if err != nil {
			return nil, err
		}
		c.vault = v
	}

	return c, nil
}

// OrgID returns the organization the session resolved to.
func (c *Client) OrgID() string {
	return c.session.OrgID
}

// SetLLMKeys validates then seals the given plaintext keys for this
// client's organization, replacing any previously set credentials. On
// any invalid key the whole call fails and nothing is stored.
func (c *Client) SetLLMKeys(keys map[string]string) error {
	if c.vault == nil {
		return domain.NewError(domain.KindKeyFormat, "vault master secret is not configured")
	}

	sealed := make(map[string]*domain.CredentialRecord, len(keys))
	for providerName, plaintext := range keys {
		record, err := c.vault.Encrypt(providerName, plaintext, c.session.OrgID)
		if err != nil {
			return err
		}
		sealed[record.Provider] = record
	}

	c.mu.Lock()
	c.keys = sealed
	c.mu.Unlock()
	return nil
}

// HasLLMKeys reports whether any credentials are set.
func (c *Client) HasLLMKeys() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys) > 0
}

// LLMProviders lists the providers with sealed credentials, sorted.
func (c *Client) LLMProviders() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.keys))
	for name := range c.keys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UploadHAR sends the capture at path to the discovery service along
// with the BYOK metadata fragment, and returns the service's response
// document untouched.
func (c *Client) UploadHAR(ctx context.Context, path string) (json.RawMessage, error) {
	c.mu.Lock()
	records := make(map[string]*domain.CredentialRecord, len(c.keys))
	for name, record := range c.keys {
		records[name] = record
	}
	c.mu.Unlock()

	return c.uploader.Upload(ctx, c.session.Token, path, upload.MetadataFor(records))
}
