package metrics

import "github.com/tsubasa0119/repo-insights/internal/domain"

// ComparisonRow is one metric of the side-by-side comparison table.
// Values are passed through without normalization.
type ComparisonRow struct {
	Metric string `json:"metric"`
	ValueA int    `json:"value_a"`
	ValueB int    `json:"value_b"`
}

// Compare produces the fixed side-by-side metric table for two
// snapshots. The row order never changes and rows are never sorted by
// magnitude. The contributor row reports the length of the fetched
// sample, not an upstream total.
func Compare(a, b *domain.Snapshot) []ComparisonRow {
	return []ComparisonRow{
		{Metric: "Stars", ValueA: a.Repository.Stars, ValueB: b.Repository.Stars},
		{Metric: "Forks", ValueA: a.Repository.Forks, ValueB: b.Repository.Forks},
		{Metric: "Contributors", ValueA: len(a.Contributors), ValueB: len(b.Contributors)},
		{Metric: "Open Issues", ValueA: a.Repository.OpenIssues, ValueB: b.Repository.OpenIssues},
		{Metric: "Watchers", ValueA: a.Repository.Watchers, ValueB: b.Repository.Watchers},
	}
}
