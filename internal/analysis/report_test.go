package analysis

import (
	"strings"
	"testing"

	"github.com/adoptai/zapi/internal/domain"
)

func TestRenderReportLayout(t *testing.T) {
	stats := domain.HarStats{
		TotalEntries:   100,
		ValidEntries:   35,
		SkippedEntries: 65,
		UniqueDomains:  2,
		SkippedByReason: map[domain.ClassificationTag]int{
			domain.TagStaticAsset: 60,
			domain.TagDuplicate:   5,
		},
		Domains:              []string{"beta.example.com", "alpha.example.com"},
		EstimatedCostUSD:     6.75,
		EstimatedTimeMinutes: 1.75,
	}

	report := RenderReport(stats)
	lines := strings.Split(strings.TrimRight(report, "\n"), "\n")

	want := []string{
		"HAR Analysis Report",
		"===================",
		"Total entries:      100",
		"API-relevant:       35",
		"Skipped:            65",
		"Unique domains:     2",
		"",
		"Skipped by reason:",
		"  STATIC_ASSET: 60",
		"  DUPLICATE: 5",
		"",
		"Domains:",
		"  alpha.example.com",
		"  beta.example.com",
		"",
		"Estimated cost:     $6.75",
		"Estimated time:     1.8 minutes",
	}

	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d:\n%s", len(want), len(lines), report)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q want %q", i, lines[i], want[i])
		}
	}
}

func TestRenderReportTieBreaksAlphabetically(t *testing.T) {
	stats := domain.HarStats{
		TotalEntries:   4,
		SkippedEntries: 4,
		SkippedByReason: map[domain.ClassificationTag]int{
			domain.TagTransportNoise: 2,
			domain.TagDuplicate:      2,
		},
	}

	report := RenderReport(stats)
	dup := strings.Index(report, "DUPLICATE")
	noise := strings.Index(report, "TRANSPORT_NOISE")
	if dup == -1 || noise == -1 || dup > noise {
		t.Errorf("equal counts must sort alphabetically:\n%s", report)
	}
}

func TestRenderReportEmptySections(t *testing.T) {
	report := RenderReport(domain.HarStats{
		EstimatedCostUSD:     5.0,
		EstimatedTimeMinutes: 5.0,
	})

	if !strings.Contains(report, "Skipped by reason:\n  (none)") {
		t.Errorf("missing empty skip section marker:\n%s", report)
	}
	if !strings.Contains(report, "Domains:\n  (none)") {
		t.Errorf("missing empty domain section marker:\n%s", report)
	}
	if !strings.Contains(report, "Estimated cost:     $5.00") {
		t.Errorf("cost must render with two decimals:\n%s", report)
	}
	if !strings.Contains(report, "Estimated time:     5.0 minutes") {
		t.Errorf("time must render with one decimal:\n%s", report)
	}
}

func TestRenderReportDeterministic(t *testing.T) {
	stats := domain.HarStats{
		TotalEntries: 6, ValidEntries: 3, SkippedEntries: 3, UniqueDomains: 3,
		SkippedByReason: map[domain.ClassificationTag]int{
			domain.TagStaticAsset:    1,
			domain.TagDuplicate:      1,
			domain.TagTransportNoise: 1,
		},
		Domains: []string{"c.example.com", "a.example.com", "b.example.com"},
	}

	first := RenderReport(stats)
	for i := 0; i < 10; i++ {
		if got := RenderReport(stats); got != first {
			t.Fatal("report output varies across identical snapshots")
		}
	}
}
