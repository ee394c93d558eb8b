package analysis

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adoptai/zapi/internal/config"
	"github.com/adoptai/zapi/internal/domain"
	"github.com/adoptai/zapi/internal/har"
)

const analyzerHAR = `{
  "log": {
    "version": "1.2",
    "creator": {"name": "zapi", "version": "0.1.0"},
    "entries": [
      {
        "startedDateTime": "2025-06-01T10:00:00.000Z",
        "request": {"method": "GET", "url": "https://app.example.com/api/users"},
        "response": {"status": 200, "content": {"size": 100, "mimeType": "application/json"}}
      },
      {
        "startedDateTime": "2025-06-01T10:00:01.000Z",
        "request": {"method": "GET", "url": "https://cdn.example.com/app.js"},
        "response": {"status": 200, "content": {"size": 9000, "mimeType": "application/javascript"}}
      },
      {
        "startedDateTime": "2025-06-01T10:00:02.000Z",
        "request": {"method": "GET", "url": "https://app.example.com/api/users"},
        "response": {"status": 200, "content": {"size": 100, "mimeType": "application/json"}}
      },
      {
        "startedDateTime": "2025-06-01T10:00:03.000Z",
        "request": {"method": "GET", "url": "https://other.example.com/api/items"},
        "response": {"status": 200, "content": {"size": 50, "mimeType": "application/json"}}
      }
    ]
  }
}`

func writeHAR(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.har")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAnalyzeFile(t *testing.T) {
	a := NewAnalyzer(config.Default(), nil)
	path := writeHAR(t, analyzerHAR)

	res, err := a.AnalyzeFile(context.Background(), path, false, "")
	if err != nil {
		t.Fatalf("AnalyzeFile returned error: %v", err)
	}

	checkInvariants(t, res.Stats)
	if res.Stats.TotalEntries != 4 || res.Stats.ValidEntries != 2 {
		t.Errorf("unexpected totals: %+v", res.Stats)
	}
	if res.Stats.SkippedByReason[domain.TagStaticAsset] != 1 ||
		res.Stats.SkippedByReason[domain.TagDuplicate] != 1 {
		t.Errorf("unexpected skip reasons: %v", res.Stats.SkippedByReason)
	}
	if res.Stats.UniqueDomains != 2 {
		t.Errorf("unique domains = %d, want 2", res.Stats.UniqueDomains)
	}
	if res.Stats.EstimatedCostUSD != 5.00+2*0.05 {
		t.Errorf("cost = %v", res.Stats.EstimatedCostUSD)
	}
	if !strings.Contains(res.Report, "API-relevant:       2") {
		t.Errorf("report does not reflect stats:\n%s", res.Report)
	}
	if res.FilteredPath != "" {
		t.Error("filtered path set without saveFiltered")
	}
}

func TestAnalyzeFileSavesFiltered(t *testing.T) {
	a := NewAnalyzer(config.Default(), nil)
	path := writeHAR(t, analyzerHAR)
	out := filepath.Join(filepath.Dir(path), "filtered.har")

	res, err := a.AnalyzeFile(context.Background(), path, true, out)
	if err != nil {
		t.Fatalf("AnalyzeFile returned error: %v", err)
	}
	if res.FilteredPath != out {
		t.Fatalf("filtered path = %q, want %q", res.FilteredPath, out)
	}

	filtered, err := har.ReadFile(out)
	if err != nil {
		t.Fatalf("filtered file unreadable: %v", err)
	}
	// Cardinality equals valid_entries, order preserved.
	if len(filtered.Entries) != res.Stats.ValidEntries {
		t.Fatalf("filtered entries = %d, want %d", len(filtered.Entries), res.Stats.ValidEntries)
	}
	if filtered.Entries[0].Request.URL != "https://app.example.com/api/users" ||
		filtered.Entries[1].Request.URL != "https://other.example.com/api/items" {
		t.Errorf("filtered order wrong: %s, %s",
			filtered.Entries[0].Request.URL, filtered.Entries[1].Request.URL)
	}
}

func TestAnalyzeFileDefaultFilteredPath(t *testing.T) {
	a := NewAnalyzer(config.Default(), nil)
	path := writeHAR(t, analyzerHAR)

	res, err := a.AnalyzeFile(context.Background(), path, true, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.FilteredPath != path+".filtered.har" {
		t.Errorf("default filtered path = %q", res.FilteredPath)
	}
}

func TestAnalyzeFileMalformedContainer(t *testing.T) {
	a := NewAnalyzer(config.Default(), nil)
	path := writeHAR(t, `{"not": "a har"}`)

	_, err := a.AnalyzeFile(context.Background(), path, false, "")
	if !domain.IsKind(err, domain.KindMalformedInput) {
		t.Fatalf("expected malformed_input, got %v", err)
	}
}

func TestAnalyzeFileMissing(t *testing.T) {
	a := NewAnalyzer(config.Default(), nil)
	_, err := a.AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "nope.har"), false, "")
	if !domain.IsKind(err, domain.KindFileIO) {
		t.Fatalf("expected file_io, got %v", err)
	}
}

func TestAnalyzeEmptyStream(t *testing.T) {
	a := NewAnalyzer(config.Default(), nil)
	path := writeHAR(t, `{"log": {"version": "1.2", "entries": []}}`)

	res, err := a.AnalyzeFile(context.Background(), path, false, "")
	if err != nil {
		t.Fatal(err)
	}
	checkInvariants(t, res.Stats)
	if res.Stats.TotalEntries != 0 {
		t.Errorf("expected zero totals: %+v", res.Stats)
	}
	if res.Stats.EstimatedCostUSD != config.Default().Cost.BaseFeeUSD {
		t.Errorf("empty stream cost = %v, want base fee", res.Stats.EstimatedCostUSD)
	}
	if res.Stats.EstimatedTimeMinutes != config.Default().Cost.FloorMinutes {
		t.Errorf("empty stream time = %v, want floor", res.Stats.EstimatedTimeMinutes)
	}
}

func TestAnalyzeMalformedEntryDoesNotAbort(t *testing.T) {
	a := NewAnalyzer(config.Default(), nil)
	body := `{"log": {"entries": [
	  {"request": {"method": "", "url": ""}, "response": {"status": 0, "content": {}}},
	  {"request": {"method": "GET", "url": "https://x.example.com/api/ok"},
	   "response": {"status": 200, "content": {"mimeType": "application/json"}}}
	]}}`
	path := writeHAR(t, body)

	res, err := a.AnalyzeFile(context.Background(), path, false, "")
	if err != nil {
		t.Fatalf("per-entry malformation must not abort: %v", err)
	}
	checkInvariants(t, res.Stats)
	if res.Stats.SkippedByReason[domain.TagMalformed] != 1 || res.Stats.ValidEntries != 1 {
		t.Errorf("unexpected stats: %+v", res.Stats)
	}
}
