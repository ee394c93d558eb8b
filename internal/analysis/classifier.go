// Package analysis implements the traffic classification and
// cost-estimation engine: a per-session classifier, running aggregate
// stats, a configurable cost model, and the textual report.
package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/adoptai/zapi/internal/config"
	"github.com/adoptai/zapi/internal/domain"
)

// Classifier tags capture entries one at a time, in capture order. It
// accumulates a signature per non-malformed entry for duplicate
// detection, so it is single-writer and session-scoped: one Classifier
// per capture, never shared across goroutines.
type Classifier struct {
	staticExts  map[string]struct{}
	noiseStatus map[int]struct{}
	pathMarkers []string
	seen        map[string]struct{}
}

// NewClassifier builds a classifier from the configured rule tables.
func NewClassifier(cfg config.AnalysisConfig) *Classifier {
	c := &Classifier{
		staticExts:  make(map[string]struct{}, len(cfg.StaticExtensions)),
		noiseStatus: make(map[int]struct{}, len(cfg.NoiseStatuses)),
		pathMarkers: append([]string(nil), cfg.APIPathMarkers...),
		seen:        make(map[string]struct{}),
	}
	for _, ext := range cfg.StaticExtensions {
		c.staticExts[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	for _, s := range cfg.NoiseStatuses {
		c.noiseStatus[s] = struct{}{}
	}
	return c
}

// Classify assigns exactly one tag to the entry. Rules apply in a fixed
// order; the first match wins. Signatures are recorded for every
// non-malformed entry regardless of its tag, so a later repeat of a
// static asset still reads as DUPLICATE.
func (c *Classifier) Classify(e *domain.CaptureEntry) domain.ClassificationTag {
	if e.Method == "" || e.URL == "" || e.Status == 0 {
		return domain.TagMalformed
	}

	sig := c.signature(e)

	if c.isStaticAsset(e) {
		c.seen[sig] = struct{}{}
		return domain.TagStaticAsset
	}

	if c.isTransportNoise(e) {
		c.seen[sig] = struct{}{}
		return domain.TagTransportNoise
	}

	if _, dup := c.seen[sig]; dup {
		return domain.TagDuplicate
	}
	c.seen[sig] = struct{}{}

	if c.isNonAPIContent(e) {
		return domain.TagNonAPIContent
	}

	return domain.TagAPIRelevant
}

func (c *Classifier) isStaticAsset(e *domain.CaptureEntry) bool {
	if u, err := url.Parse(e.URL); err == nil {
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
		if _, ok := c.staticExts[ext]; ok && ext != "" {
			return true
		}
	}

	ct := e.ContentType
	switch {
	case strings.HasPrefix(ct, "image/"),
		strings.HasPrefix(ct, "font/"),
		ct == "text/css",
		ct == "application/javascript",
		ct == "text/javascript",
		ct == "application/x-javascript":
		return true
	}
	return false
}

func (c *Classifier) isTransportNoise(e *domain.CaptureEntry) bool {
	if _, ok := c.noiseStatus[e.Status]; ok {
		return true
	}
	// CORS preflight with no structured response body.
	if strings.EqualFold(e.Method, "OPTIONS") && !isStructured(e.ContentType) {
		return true
	}
	return false
}

func (c *Classifier) isNonAPIContent(e *domain.CaptureEntry) bool {
	if e.ContentType != "text/html" && e.ContentType != "application/xhtml+xml" {
		return false
	}
	return !c.hasAPIPath(e.URL)
}

func (c *Classifier) hasAPIPath(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	p := strings.ToLower(u.Path)
	for _, marker := range c.pathMarkers {
		if strings.Contains(p, marker) {
			return true
		}
	}
	return false
}

func isStructured(contentType string) bool {
	switch {
	case strings.Contains(contentType, "json"),
		strings.Contains(contentType, "xml"),
		strings.Contains(contentType, "graphql"),
		contentType == "application/x-www-form-urlencoded":
		return true
	}
	return false
}

// signature identifies an exchange for duplicate detection: method plus
// normalized URL plus a hash of the request body. The URL normalization
// sorts query parameters so logically identical calls collide.
func (c *Classifier) signature(e *domain.CaptureEntry) string {
	normalized := e.URL
	if u, err := url.Parse(e.URL); err == nil {
		q := u.Query()
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString(u.Scheme)
		b.WriteString("://")
		b.WriteString(strings.ToLower(u.Host))
		b.WriteString(u.Path)
		for _, k := range keys {
			vs := append([]string(nil), q[k]...)
			sort.Strings(vs)
			for _, v := range vs {
				b.WriteString("&")
				b.WriteString(k)
				b.WriteString("=")
				b.WriteString(v)
			}
		}
		normalized = b.String()
	}

	bodyHash := sha256.Sum256([]byte(e.RequestBody))
	h := sha256.New()
	h.Write([]byte(strings.ToUpper(e.Method)))
	h.Write([]byte{0})
	h.Write([]byte(normalized))
	h.Write([]byte{0})
	h.Write(bodyHash[:])
	return hex.EncodeToString(h.Sum(nil))
}
