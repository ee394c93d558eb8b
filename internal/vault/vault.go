// Package vault seals BYOK credentials with authenticated encryption.
//
// Each credential is encrypted under a key derived from the vault's
// master secret and the caller's organization context, with the context
// also bound as associated data. A record sealed for one organization
// therefore cannot be opened under another's context: decryption fails
// closed on any tag mismatch.
//
// Plaintext only ever exists transiently in the caller's hands; the
// vault neither logs it nor writes it anywhere durable.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"

	"github.com/adoptai/zapi/internal/domain"
	"github.com/adoptai/zapi/internal/provider"
)

const (
	keyLength   = 32 // AES-256
	nonceLength = 12 // GCM standard nonce
	saltLength  = 16
	tagLength   = 16 // GCM tag

	defaultIterations = 100000
)

// Vault holds the immutable master secret and the provider registry.
// Encrypt and Decrypt are safe to call concurrently.
type Vault struct {
	master     []byte
	registry   *provider.Registry
	iterations int
}

// Option configures a Vault.
type Option func(*Vault)

// WithIterations overrides the PBKDF2 iteration count.
func WithIterations(n int) Option {
	return func(v *Vault) {
		if n > 0 {
			v.iterations = n
		}
	}
}

// New creates a vault. The master secret must be non-empty; the
// registry validates plaintext formats before encryption.
func New(masterSecret string, registry *provider.Registry, opts ...Option) (*Vault, error) {
	if strings.TrimSpace(masterSecret) == "" {
		return nil, errors.New("vault: master secret cannot be empty")
	}
	if registry == nil {
		registry = provider.New()
	}

	v := &Vault{
		master:     []byte(masterSecret),
		registry:   registry,
		iterations: defaultIterations,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Encrypt validates the plaintext key for the provider, then seals it
// under the organization context. Every call draws a fresh salt and
// nonce, so encrypting the same plaintext twice yields distinct
// records.
func (v *Vault) Encrypt(providerName, plaintext, orgContext string) (*domain.CredentialRecord, error) {
	if strings.TrimSpace(orgContext) == "" {
		return nil, domain.NewError(domain.KindKeyFormat, "organization context cannot be empty")
	}

	if err := v.registry.Validate(providerName, plaintext); err != nil {
		return nil, err
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	aead, err := v.aead(orgContext, salt)
	if err != nil {
		return nil, err
	}

	sealed := aead.Seal(nil, nonce, []byte(plaintext), []byte(orgContext))
	split := len(sealed) - tagLength

	return &domain.CredentialRecord{
		ID:             uuid.NewString(),
		Provider:       strings.ToLower(strings.TrimSpace(providerName)),
		Ciphertext:     sealed[:split],
		Nonce:          nonce,
		Salt:           salt,
		AuthTag:        sealed[split:],
		OrgFingerprint: Fingerprint(orgContext),
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// Decrypt recomputes the per-organization key and opens the record. Any
// tampering with the ciphertext, nonce, tag, or a mismatched
// organization context yields a decryption_authentication error and no
// plaintext.
func (v *Vault) Decrypt(record *domain.CredentialRecord, orgContext string) (string, error) {
	if record == nil {
		return "", domain.ErrDecryptionAuth("no credential record")
	}
	if len(record.Nonce) != nonceLength || len(record.Salt) != saltLength || len(record.AuthTag) != tagLength {
		return "", domain.ErrDecryptionAuth("credential record is truncated")
	}

	aead, err := v.aead(orgContext, record.Salt)
	if err != nil {
		return "", err
	}

	sealed := make([]byte, 0, len(record.Ciphertext)+tagLength)
	sealed = append(sealed, record.Ciphertext...)
	sealed = append(sealed, record.AuthTag...)

	plaintext, err := aead.Open(nil, record.Nonce, sealed, []byte(orgContext))
	if err != nil {
		return "", domain.ErrDecryptionAuth("authentication tag mismatch")
	}
	return string(plaintext), nil
}

// aead derives the per-organization key and constructs the cipher.
// The organization context is folded into the PBKDF2 password alongside
// the master secret, so neither alone reconstructs the key.
func (v *Vault) aead(orgContext string, salt []byte) (cipher.AEAD, error) {
	password := make([]byte, 0, len(v.master)+1+len(orgContext))
	password = append(password, v.master...)
	password = append(password, 0)
	password = append(password, orgContext...)

	key := pbkdf2.Key(password, salt, v.iterations, keyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Fingerprint derives a short, non-reversible identifier for an
// organization context, suitable for routing and persistence.
func Fingerprint(orgContext string) string {
	sum := sha256.Sum256([]byte(orgContext))
	return hex.EncodeToString(sum[:8])
}
