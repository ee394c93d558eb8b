package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/adoptai/zapi/internal/domain"
)

// RenderReport formats a stats snapshot as a fixed-layout plain-text
// report: summary, skip-reason breakdown (descending count, then
// alphabetical), alphabetical domain list, then the estimates. Output
// is deterministic for identical snapshots.
func RenderReport(stats domain.HarStats) string {
	var b strings.Builder

	b.WriteString("HAR Analysis Report\n")
	b.WriteString("===================\n")
	fmt.Fprintf(&b, "Total entries:      %d\n", stats.TotalEntries)
	fmt.Fprintf(&b, "API-relevant:       %d\n", stats.ValidEntries)
	fmt.Fprintf(&b, "Skipped:            %d\n", stats.SkippedEntries)
	fmt.Fprintf(&b, "Unique domains:     %d\n", stats.UniqueDomains)
	b.WriteString("\n")

	b.WriteString("Skipped by reason:\n")
	if len(stats.SkippedByReason) == 0 {
		b.WriteString("  (none)\n")
	} else {
		type reasonCount struct {
			reason domain.ClassificationTag
			count  int
		}
		reasons := make([]reasonCount, 0, len(stats.SkippedByReason))
		for r, n := range stats.SkippedByReason {
			reasons = append(reasons, reasonCount{r, n})
		}
		sort.Slice(reasons, func(i, j int) bool {
			if reasons[i].count != reasons[j].count {
				return reasons[i].count > reasons[j].count
			}
			return reasons[i].reason < reasons[j].reason
		})
		for _, rc := range reasons {
			fmt.Fprintf(&b, "  %s: %d\n", rc.reason, rc.count)
		}
	}
	b.WriteString("\n")

	b.WriteString("Domains:\n")
	if len(stats.Domains) == 0 {
		b.WriteString("  (none)\n")
	} else {
		domains := append([]string(nil), stats.Domains...)
		sort.Strings(domains)
		for _, d := range domains {
			fmt.Fprintf(&b, "  %s\n", d)
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Estimated cost:     $%.2f\n", stats.EstimatedCostUSD)
	fmt.Fprintf(&b, "Estimated time:     %.1f minutes\n", stats.EstimatedTimeMinutes)

	return b.String()
}
