// Package domain holds the canonical data model shared across the
// analysis pipeline and the credential vault.
package domain

import "time"

// ClassificationTag labels a single capture entry with the reason it was
// kept or skipped. Each entry receives exactly one tag.
type ClassificationTag string

const (
	// TagAPIRelevant marks an entry that looks like a genuine API call.
	TagAPIRelevant ClassificationTag = "API_RELEVANT"

	// TagStaticAsset marks scripts, stylesheets, images, fonts and
	// similar resources served alongside the application.
	TagStaticAsset ClassificationTag = "STATIC_ASSET"

	// TagNonAPIContent marks HTML documents that are not served from an
	// API-looking path.
	TagNonAPIContent ClassificationTag = "NON_API_CONTENT"

	// TagDuplicate marks a repeat of an exchange already seen in the
	// session.
	TagDuplicate ClassificationTag = "DUPLICATE"

	// TagTransportNoise marks preflights and non-informative responses
	// (no-content, protocol switches).
	TagTransportNoise ClassificationTag = "TRANSPORT_NOISE"

	// TagMalformed marks an entry missing its method, URL, or status.
	TagMalformed ClassificationTag = "MALFORMED"
)

// SkipTags lists every tag that excludes an entry from the relevant set.
func SkipTags() []ClassificationTag {
	return []ClassificationTag{
		TagStaticAsset,
		TagNonAPIContent,
		TagDuplicate,
		TagTransportNoise,
		TagMalformed,
	}
}

// CaptureEntry is one recorded request/response exchange. Entries are
// produced once per network event and flow read-only through the
// pipeline; nothing mutates them after construction.
type CaptureEntry struct {
	// Seq is the zero-based position of the entry in the capture.
	Seq int

	Method string
	URL    string
	// Domain is the hostname extracted from URL; empty when the URL
	// does not parse.
	Domain string

	RequestHeaders  map[string]string
	ResponseHeaders map[string]string
	RequestBody     string

	Status int
	// ContentType is the declared response media type, lowercased,
	// without parameters.
	ContentType string
	BodySize    int64

	StartedAt time.Time
	// Duration is the total exchange time reported by the capture.
	Duration time.Duration
}

// HarStats is an aggregate snapshot of one analysis run.
//
// Invariants: ValidEntries+SkippedEntries == TotalEntries, the
// SkippedByReason counts sum to SkippedEntries, and UniqueDomains equals
// len(Domains). Domains only accumulate from API_RELEVANT entries.
type HarStats struct {
	TotalEntries   int `json:"total_entries"`
	ValidEntries   int `json:"valid_entries"`
	SkippedEntries int `json:"skipped_entries"`
	UniqueDomains  int `json:"unique_domains"`

	SkippedByReason map[ClassificationTag]int `json:"skipped_by_reason"`

	// Domains is the sorted set of hostnames seen on API-relevant
	// entries.
	Domains []string `json:"domains"`

	EstimatedCostUSD     float64 `json:"estimated_cost_usd"`
	EstimatedTimeMinutes float64 `json:"estimated_time_minutes"`
}

// CredentialRecord is the only persistable form of a BYOK credential:
// ciphertext plus the parameters needed to authenticate and decrypt it
// under the right organization context. Plaintext never appears here.
type CredentialRecord struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`

	Ciphertext []byte `json:"ciphertext"`
	Nonce      []byte `json:"nonce"`
	Salt       []byte `json:"salt"`
	// AuthTag is the 128-bit GCM authentication tag.
	AuthTag []byte `json:"auth_tag"`

	// OrgFingerprint identifies (without disclosing) the organization
	// context the record was sealed under.
	OrgFingerprint string `json:"org_fingerprint"`

	CreatedAt time.Time `json:"created_at"`
}
