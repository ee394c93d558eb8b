package har

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/adoptai/zapi/internal/domain"
)

const sampleHAR = `{
  "log": {
    "version": "1.2",
    "creator": {"name": "zapi", "version": "0.1.0"},
    "browser": {"name": "chromium", "version": "120.0"},
    "pages": [{"id": "page_1", "title": "app"}],
    "_vendorExtension": {"trace": true},
    "entries": [
      {
        "startedDateTime": "2025-06-01T10:00:00.000Z",
        "time": 42.5,
        "request": {
          "method": "GET",
          "url": "https://app.example.com/api/users?page=1",
          "headers": [{"name": "Accept", "value": "application/json"}]
        },
        "response": {
          "status": 200,
          "headers": [{"name": "Content-Type", "value": "application/json; charset=utf-8"}],
          "content": {"size": 512, "mimeType": "application/json; charset=utf-8"}
        },
        "_entryExtension": "kept"
      },
      {
        "startedDateTime": "2025-06-01T10:00:01.000Z",
        "time": 10,
        "request": {"method": "GET", "url": "https://cdn.example.com/app.js", "headers": []},
        "response": {
          "status": 200,
          "headers": [],
          "content": {"size": 90210, "mimeType": "application/javascript"}
        }
      }
    ]
  }
}`

func TestParseTolerantOfUnknownFields(t *testing.T) {
	a, err := Parse([]byte(sampleHAR))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(a.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(a.Entries))
	}

	ce := a.CaptureEntry(0)
	if ce.Method != "GET" || ce.Domain != "app.example.com" {
		t.Errorf("unexpected entry: %+v", ce)
	}
	if ce.ContentType != "application/json" {
		t.Errorf("media type parameters should be stripped, got %q", ce.ContentType)
	}
	if ce.BodySize != 512 {
		t.Errorf("unexpected body size %d", ce.BodySize)
	}
	if ce.RequestHeaders["accept"] != "application/json" {
		t.Errorf("headers not mapped: %v", ce.RequestHeaders)
	}
}

func TestParseRejectsBrokenContainers(t *testing.T) {
	cases := map[string]string{
		"not json":      `{"log":`,
		"no log":        `{"other": 1}`,
		"log not obj":   `{"log": [1,2]}`,
		"entries shape": `{"log": {"entries": {"a": 1}}}`,
	}
	for name, body := range cases {
		if _, err := Parse([]byte(body)); !domain.IsKind(err, domain.KindMalformedInput) {
			t.Errorf("%s: expected malformed_input, got %v", name, err)
		}
	}
}

func TestParseToleratesBadIndividualEntry(t *testing.T) {
	body := `{"log": {"entries": [{"request": "not-an-object"}]}}`
	a, err := Parse([]byte(body))
	if err != nil {
		t.Fatalf("bad entry must not abort parse: %v", err)
	}
	ce := a.CaptureEntry(0)
	if ce.Method != "" || ce.URL != "" {
		t.Errorf("undecodable entry should be zero-valued, got %+v", ce)
	}
}

func TestFilterRoundTrip(t *testing.T) {
	a, err := Parse([]byte(sampleHAR))
	if err != nil {
		t.Fatal(err)
	}

	out, err := a.Filter([]bool{true, false})
	if err != nil {
		t.Fatalf("Filter returned error: %v", err)
	}

	// The filtered document must parse with the same reader.
	filtered, err := Parse(out)
	if err != nil {
		t.Fatalf("filtered output did not round-trip: %v", err)
	}
	if len(filtered.Entries) != 1 {
		t.Fatalf("expected 1 kept entry, got %d", len(filtered.Entries))
	}
	if filtered.Entries[0].Request.URL != "https://app.example.com/api/users?page=1" {
		t.Errorf("wrong entry kept: %s", filtered.Entries[0].Request.URL)
	}

	// Non-entry metadata, including unknown fields, is preserved.
	var doc struct {
		Log map[string]json.RawMessage `json:"log"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"version", "creator", "browser", "pages", "_vendorExtension"} {
		if _, ok := doc.Log[key]; !ok {
			t.Errorf("log field %q lost in filtered output", key)
		}
	}
	var version string
	if err := json.Unmarshal(doc.Log["version"], &version); err != nil || version != "1.2" {
		t.Errorf("version not copied verbatim: %s", doc.Log["version"])
	}

	// The kept entry keeps its unknown fields too.
	var entry map[string]json.RawMessage
	if err := json.Unmarshal(filtered.Entries[0].Raw, &entry); err != nil {
		t.Fatal(err)
	}
	if _, ok := entry["_entryExtension"]; !ok {
		t.Error("entry-level unknown field lost")
	}
}

func TestFilterPreservesDocumentSiblings(t *testing.T) {
	body := `{
	  "_exporter": {"name": "zapi", "version": "0.1.0"},
	  "log": {
	    "version": "1.2",
	    "entries": [
	      {"request": {"method": "GET", "url": "https://x/1"}, "response": {"status": 200, "content": {}}}
	    ]
	  }
	}`
	a, err := Parse([]byte(body))
	if err != nil {
		t.Fatal(err)
	}

	out, err := a.Filter([]bool{true})
	if err != nil {
		t.Fatal(err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatal(err)
	}
	raw, ok := doc["_exporter"]
	if !ok {
		t.Fatal("document-level sibling of log lost in filtered output")
	}
	var exporter struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &exporter); err != nil || exporter.Name != "zapi" {
		t.Errorf("sibling not copied verbatim: %s", raw)
	}
}

func TestFilterPreservesRelativeOrder(t *testing.T) {
	entries := `[
	  {"request": {"method": "GET", "url": "https://x/1"}, "response": {"status": 200, "content": {}}},
	  {"request": {"method": "GET", "url": "https://x/2"}, "response": {"status": 200, "content": {}}},
	  {"request": {"method": "GET", "url": "https://x/3"}, "response": {"status": 200, "content": {}}}
	]`
	a, err := Parse([]byte(`{"log": {"entries": ` + entries + `}}`))
	if err != nil {
		t.Fatal(err)
	}

	out, err := a.Filter([]bool{true, false, true})
	if err != nil {
		t.Fatal(err)
	}
	filtered, err := Parse(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(filtered.Entries))
	}
	if filtered.Entries[0].Request.URL != "https://x/1" || filtered.Entries[1].Request.URL != "https://x/3" {
		t.Errorf("order not preserved: %s, %s",
			filtered.Entries[0].Request.URL, filtered.Entries[1].Request.URL)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.har"))
	if !domain.IsKind(err, domain.KindFileIO) {
		t.Fatalf("expected file_io error, got %v", err)
	}
}

func TestWriteFiltered(t *testing.T) {
	a, err := Parse([]byte(sampleHAR))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "filtered.har")
	if err := a.WriteFiltered(path, []bool{false, true}); err != nil {
		t.Fatalf("WriteFiltered returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	filtered, err := Parse(data)
	if err != nil {
		t.Fatalf("written file did not parse: %v", err)
	}
	if len(filtered.Entries) != 1 || filtered.Entries[0].Request.URL != "https://cdn.example.com/app.js" {
		t.Errorf("unexpected filtered contents")
	}
}
