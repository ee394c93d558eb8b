// Package zapi is the public API for embedding the capture analysis
// pipeline and the BYOK credential vault. This is the stable surface
// for external consumers; implementation lives under internal/.
package zapi

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/adoptai/zapi/internal/analysis"
	"github.com/adoptai/zapi/internal/config"
	"github.com/adoptai/zapi/internal/domain"
	"github.com/adoptai/zapi/internal/provider"
	"github.com/adoptai/zapi/internal/vault"
)

// HarStats is the aggregate snapshot of one analysis run.
// See internal/domain.HarStats for the invariants it upholds.
type HarStats = domain.HarStats

// ClassificationTag labels one capture entry.
type ClassificationTag = domain.ClassificationTag

// CredentialRecord is the sealed, persistable form of a BYOK credential.
type CredentialRecord = domain.CredentialRecord

// Result is the outcome of one analysis run.
type Result = analysis.Result

// Config is the runtime configuration.
type Config = config.Config

// Classification tags.
const (
	TagAPIRelevant    = domain.TagAPIRelevant
	TagStaticAsset    = domain.TagStaticAsset
	TagNonAPIContent  = domain.TagNonAPIContent
	TagDuplicate      = domain.TagDuplicate
	TagTransportNoise = domain.TagTransportNoise
	TagMalformed      = domain.TagMalformed
)

// Configuration entry points.
var (
	// DefaultConfig returns the documented defaults.
	DefaultConfig = config.Default
	// LoadConfig reads an optional YAML file with ZAPI_ env overrides.
	LoadConfig = config.Load
)

// AnalyzeOption adjusts one Analyze call.
type AnalyzeOption func(*analyzeSettings)

type analyzeSettings struct {
	cfg        *config.Config
	logger     *slog.Logger
	filtered   bool
	outputPath string
}

// WithConfig runs the analysis under cfg instead of the defaults.
func WithConfig(cfg *Config) AnalyzeOption {
	return func(s *analyzeSettings) { s.cfg = cfg }
}

// WithLogger attaches a logger to the analysis run.
func WithLogger(logger *slog.Logger) AnalyzeOption {
	return func(s *analyzeSettings) { s.logger = logger }
}

// WithFilteredExport writes the accepted subset next to the input (or to
// outputPath when non-empty).
func WithFilteredExport(outputPath string) AnalyzeOption {
	return func(s *analyzeSettings) {
		s.filtered = true
		s.outputPath = outputPath
	}
}

// Analyze classifies the HAR capture at path and returns its stats,
// rendered report, and (when requested) the filtered export path.
func Analyze(ctx context.Context, path string, opts ...AnalyzeOption) (*Result, error) {
	s := analyzeSettings{cfg: config.Default()}
	for _, opt := range opts {
		opt(&s)
	}

	a := analysis.NewAnalyzer(s.cfg, s.logger)
	return a.AnalyzeFile(ctx, path, s.filtered, s.outputPath)
}

// ValidateProviderKey checks a plaintext key against the provider's
// format rule without encrypting or transmitting anything.
func ValidateProviderKey(providerName, key string) error {
	return provider.New().Validate(providerName, key)
}

// EncryptCredential validates and seals one plaintext key under the
// organization context, using a key derived from masterSecret.
func EncryptCredential(masterSecret, providerName, plaintext, orgContext string) (*CredentialRecord, error) {
	v, err := vault.New(masterSecret, nil)
	if err != nil {
		return nil, err
	}
	return v.Encrypt(providerName, plaintext, orgContext)
}

// DecryptCredential opens a sealed record under the organization
// context. Any mismatch of secret, context, or record contents fails
// closed without plaintext.
func DecryptCredential(masterSecret string, record *CredentialRecord, orgContext string) (string, error) {
	v, err := vault.New(masterSecret, nil)
	if err != nil {
		return "", err
	}
	return v.Decrypt(record, orgContext)
}

// envKeyNames maps the conventional environment variable for each
// built-in provider.
var envKeyNames = map[string]string{
	"anthropic":   "ANTHROPIC_API_KEY",
	"openai":      "OPENAI_API_KEY",
	"google":      "GOOGLE_API_KEY",
	"cohere":      "COHERE_API_KEY",
	"huggingface": "HUGGINGFACE_API_KEY",
}

// CredentialsFromEnv collects plaintext provider keys from the
// environment, after loading an optional .env file. Only set, non-blank
// variables appear in the result; nothing is validated here.
func CredentialsFromEnv() map[string]string {
	// Missing .env is fine; the process environment still applies.
	_ = godotenv.Load()

	keys := make(map[string]string)
	for providerName, envName := range envKeyNames {
		if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
			keys[providerName] = v
		}
	}
	return keys
}
