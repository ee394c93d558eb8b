// Package upload sends a captured HAR artifact to the discovery
// service, merging the BYOK metadata fragment into the request. Retry
// policy belongs to the caller; a failed upload surfaces as a transport
// error and touches nothing on disk.
package upload

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/adoptai/zapi/internal/domain"
)

const defaultBaseURL = "https://api.adopt.ai"

// Uploader posts HAR files to the discovery API.
type Uploader struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the uploader.
type Option func(*Uploader)

// WithBaseURL overrides the discovery API base.
func WithBaseURL(u string) Option {
	return func(up *Uploader) { up.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(up *Uploader) { up.httpClient = hc }
}

// New creates an uploader.
func New(opts ...Option) *Uploader {
	up := &Uploader{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(up)
	}
	return up
}

// EncodedRecord is the wire form of one sealed credential: every binary
// component base64-encoded for transport.
type EncodedRecord struct {
	Provider       string `json:"provider"`
	Ciphertext     string `json:"ciphertext"`
	Nonce          string `json:"nonce"`
	Salt           string `json:"salt"`
	AuthTag        string `json:"auth_tag"`
	OrgFingerprint string `json:"org_fingerprint"`
}

// Metadata is the fragment merged into the upload payload. BYOKEnabled
// is always present; EncryptedLLMKeys only when credentials are set.
type Metadata struct {
	BYOKEnabled      bool                     `json:"byok_enabled"`
	EncryptedLLMKeys map[string]EncodedRecord `json:"encrypted_llm_keys,omitempty"`
}

// EncodeRecord converts a credential record to its wire form.
func EncodeRecord(r *domain.CredentialRecord) EncodedRecord {
	return EncodedRecord{
		Provider:       r.Provider,
		Ciphertext:     base64.StdEncoding.EncodeToString(r.Ciphertext),
		Nonce:          base64.StdEncoding.EncodeToString(r.Nonce),
		Salt:           base64.StdEncoding.EncodeToString(r.Salt),
		AuthTag:        base64.StdEncoding.EncodeToString(r.AuthTag),
		OrgFingerprint: r.OrgFingerprint,
	}
}

// MetadataFor builds the upload fragment from the sealed credentials.
func MetadataFor(records map[string]*domain.CredentialRecord) Metadata {
	meta := Metadata{BYOKEnabled: len(records) > 0}
	if len(records) == 0 {
		return meta
	}
	meta.EncryptedLLMKeys = make(map[string]EncodedRecord, len(records))
	for p, r := range records {
		meta.EncryptedLLMKeys[p] = EncodeRecord(r)
	}
	return meta
}

// Upload posts the HAR file at path with the metadata fragment and the
// bearer token, returning the service's response document untouched.
func (up *Uploader) Upload(ctx context.Context, token, path string, meta Metadata) (json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.ErrFileIO(path, err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := func() error {
			part, err := mw.CreateFormFile("file", filepath.Base(path))
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, f); err != nil {
				return err
			}

			metaJSON, err := json.Marshal(meta)
			if err != nil {
				return err
			}
			if err := mw.WriteField("metadata", string(metaJSON)); err != nil {
				return err
			}
			return mw.Close()
		}()
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		up.baseURL+"/v1/api-discovery/upload-file", pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := up.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.KindTransport, "upload request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapError(domain.KindTransport, "reading upload response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewError(domain.KindTransport,
			fmt.Sprintf("upload failed: HTTP %d", resp.StatusCode))
	}

	return json.RawMessage(body), nil
}
