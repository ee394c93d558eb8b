// Package har reads and writes HTTP Archive containers. Parsing is
// tolerant: unknown fields anywhere in the document are preserved so a
// filtered rewrite stays byte-compatible with the producing tool.
package har

import (
	"encoding/json"
	"mime"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/adoptai/zapi/internal/domain"
)

// Archive is a parsed HAR document. Both object levels are kept as raw
// fields so everything except the entry list round-trips verbatim.
type Archive struct {
	// docFields holds every key of the document object. The standard
	// container carries only log, but producers add siblings.
	docFields map[string]json.RawMessage

	// logFields holds every key of the log object, including ones this
	// package does not model.
	logFields map[string]json.RawMessage

	// Entries are the decoded exchanges, in capture order.
	Entries []Entry
}

// Entry is one exchange. Raw keeps the original JSON for lossless
// re-export; the typed fields cover only what classification needs.
type Entry struct {
	Raw json.RawMessage

	StartedDateTime string   `json:"startedDateTime"`
	Time            float64  `json:"time"`
	Request         Request  `json:"request"`
	Response        Response `json:"response"`
}

type Request struct {
	Method   string   `json:"method"`
	URL      string   `json:"url"`
	Headers  []Header `json:"headers"`
	PostData PostData `json:"postData"`
}

type PostData struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

type Response struct {
	Status  int      `json:"status"`
	Headers []Header `json:"headers"`
	Content Content  `json:"content"`
}

type Content struct {
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Parse decodes a HAR document. A document without a log object or
// whose entries field is not an array is a malformed container.
func Parse(data []byte) (*Archive, error) {
	var docFields map[string]json.RawMessage
	if err := json.Unmarshal(data, &docFields); err != nil {
		return nil, domain.ErrMalformedInput("container is not valid JSON", err)
	}
	rawLog, ok := docFields["log"]
	if !ok || len(rawLog) == 0 {
		return nil, domain.ErrMalformedInput("container has no log object", nil)
	}

	var logFields map[string]json.RawMessage
	if err := json.Unmarshal(rawLog, &logFields); err != nil {
		return nil, domain.ErrMalformedInput("log is not an object", err)
	}

	var rawEntries []json.RawMessage
	if raw, ok := logFields["entries"]; ok {
		if err := json.Unmarshal(raw, &rawEntries); err != nil {
			return nil, domain.ErrMalformedInput("entries is not an array", err)
		}
	}

	entries := make([]Entry, 0, len(rawEntries))
	for _, raw := range rawEntries {
		var e Entry
		// Individual undecodable entries surface as zero-valued
		// entries and classify as MALFORMED; they never abort the run.
		_ = json.Unmarshal(raw, &e)
		e.Raw = raw
		entries = append(entries, e)
	}

	return &Archive{docFields: docFields, logFields: logFields, Entries: entries}, nil
}

// ReadFile parses the HAR container at path.
func ReadFile(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.ErrFileIO(path, err)
	}
	return Parse(data)
}

// CaptureEntry converts the entry at index i into the domain model.
func (a *Archive) CaptureEntry(i int) domain.CaptureEntry {
	e := a.Entries[i]

	ce := domain.CaptureEntry{
		Seq:             i,
		Method:          e.Request.Method,
		URL:             e.Request.URL,
		RequestHeaders:  headerMap(e.Request.Headers),
		ResponseHeaders: headerMap(e.Response.Headers),
		RequestBody:     e.Request.PostData.Text,
		Status:          e.Response.Status,
		ContentType:     normalizeMediaType(e.Response.Content.MimeType),
		BodySize:        e.Response.Content.Size,
		Duration:        time.Duration(e.Time * float64(time.Millisecond)),
	}

	if u, err := url.Parse(e.Request.URL); err == nil {
		ce.Domain = u.Hostname()
	}
	if ts, err := time.Parse(time.RFC3339Nano, e.StartedDateTime); err == nil {
		ce.StartedAt = ts
	}

	return ce
}

// Filter produces a new document keeping only the entries at indexes
// where keep is true, in their original order. Every other field, at
// both the document and log level, is copied through untouched.
func (a *Archive) Filter(keep []bool) ([]byte, error) {
	kept := make([]json.RawMessage, 0, len(a.Entries))
	for i, e := range a.Entries {
		if i < len(keep) && keep[i] {
			kept = append(kept, e.Raw)
		}
	}

	entriesJSON, err := json.Marshal(kept)
	if err != nil {
		return nil, err
	}

	logFields := make(map[string]json.RawMessage, len(a.logFields))
	for k, v := range a.logFields {
		logFields[k] = v
	}
	logFields["entries"] = entriesJSON

	logJSON, err := json.Marshal(logFields)
	if err != nil {
		return nil, err
	}

	docFields := make(map[string]json.RawMessage, len(a.docFields))
	for k, v := range a.docFields {
		docFields[k] = v
	}
	docFields["log"] = logJSON

	return json.Marshal(docFields)
}

// WriteFiltered writes the filtered document to path.
func (a *Archive) WriteFiltered(path string, keep []bool) error {
	data, err := a.Filter(keep)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return domain.ErrFileIO(path, err)
	}
	return nil
}

func headerMap(hs []Header) map[string]string {
	if len(hs) == 0 {
		return nil
	}
	m := make(map[string]string, len(hs))
	for _, h := range hs {
		m[strings.ToLower(h.Name)] = h.Value
	}
	return m
}

func normalizeMediaType(mt string) string {
	if mt == "" {
		return ""
	}
	parsed, _, err := mime.ParseMediaType(mt)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mt))
	}
	return parsed
}
