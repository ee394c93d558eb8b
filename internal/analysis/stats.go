package analysis

import (
	"sort"

	"github.com/adoptai/zapi/internal/domain"
)

// Aggregator maintains running totals over (entry, tag) pairs. Like the
// Classifier it is single-writer and session-scoped. Snapshot is a pure
// read that copies all mutable state out.
type Aggregator struct {
	total   int
	valid   int
	skipped int

	byReason map[domain.ClassificationTag]int
	domains  map[string]struct{}
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		byReason: make(map[domain.ClassificationTag]int),
		domains:  make(map[string]struct{}),
	}
}

// Observe records one classified entry. Domain extraction only applies
// to API-relevant entries.
func (a *Aggregator) Observe(e *domain.CaptureEntry, tag domain.ClassificationTag) {
	a.total++
	if tag == domain.TagAPIRelevant {
		a.valid++
		if e.Domain != "" {
			a.domains[e.Domain] = struct{}{}
		}
		return
	}
	a.skipped++
	a.byReason[tag]++
}

// Snapshot returns the current aggregate state. An empty stream yields
// all-zero counts and empty collections.
func (a *Aggregator) Snapshot() domain.HarStats {
	byReason := make(map[domain.ClassificationTag]int, len(a.byReason))
	for k, v := range a.byReason {
		byReason[k] = v
	}

	domains := make([]string, 0, len(a.domains))
	for d := range a.domains {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	return domain.HarStats{
		TotalEntries:    a.total,
		ValidEntries:    a.valid,
		SkippedEntries:  a.skipped,
		UniqueDomains:   len(domains),
		SkippedByReason: byReason,
		Domains:         domains,
	}
}
