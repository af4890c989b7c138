// Package metrics derives presentation-ready projections, a composite
// health score, and side-by-side comparisons from analytics snapshots.
// Every function here is pure: it never fails, treats missing or
// malformed upstream data as zero/empty/neutral, and allocates fresh
// output on every call.
package metrics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tsubasa0119/repo-insights/internal/domain"
)

const (
	topLanguageCount    = 6
	topLabelCount       = 5
	activityWindowWeeks = 12
)

// LanguageShare is one language's slice of the repository's bytes.
type LanguageShare struct {
	Name    string  `json:"name"`
	Bytes   int64   `json:"bytes"`
	Percent float64 `json:"percent"`
}

// ActivityPoint is one labeled week of the recent commit-activity window.
type ActivityPoint struct {
	Label   string `json:"label"`
	Date    string `json:"date"`
	Commits int    `json:"commits"`
}

// IssueStats tallies the fetched issue sample by state.
type IssueStats struct {
	Open   int `json:"open"`
	Closed int `json:"closed"`
	Total  int `json:"total"`
}

// LabelCount is one label's occurrence count across the issue sample.
type LabelCount struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

// Summary bundles the derived projections of one snapshot. It is the
// single shared product consumed by the API, the CLI, the exporter, and
// the chart renderer.
type Summary struct {
	Languages []LanguageShare `json:"languages"`
	Activity  []ActivityPoint `json:"activity"`
	Issues    IssueStats      `json:"issues"`
	Labels    []LabelCount    `json:"labels"`
}

// Compute derives all projections from the snapshot.
func Compute(s *domain.Snapshot) *Summary {
	return &Summary{
		Languages: LanguageDistribution(s.Languages),
		Activity:  ActivityWindow(s.Activity),
		Issues:    IssueStatistics(s.Issues),
		Labels:    TopLabels(s.Issues),
	}
}

// LanguageDistribution computes each language's share of the non-zero
// byte total, rounded to one decimal, sorted by byte count descending,
// trimmed to the top 6. An empty or all-zero map yields an empty result.
// Equal byte counts are ordered by name so the output is deterministic.
func LanguageDistribution(languages domain.LanguageBytes) []LanguageShare {
	entries := make([]LanguageShare, 0, len(languages))
	var total int64
	for name, bytes := range languages {
		if bytes <= 0 {
			continue
		}
		entries = append(entries, LanguageShare{Name: name, Bytes: bytes})
		total += bytes
	}
	if total == 0 {
		return []LanguageShare{}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Bytes != entries[j].Bytes {
			return entries[i].Bytes > entries[j].Bytes
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > topLanguageCount {
		entries = entries[:topLanguageCount]
	}

	for i := range entries {
		entries[i].Percent = math.Round(float64(entries[i].Bytes)/float64(total)*1000) / 10
	}
	return entries
}

// ActivityWindow keeps the last 12 well-formed weekly buckets, clamps
// negative totals to zero, and labels the kept entries sequentially in
// order, not by calendar week number.
func ActivityWindow(weeks []domain.CommitActivityWeek) []ActivityPoint {
	valid := make([]domain.CommitActivityWeek, 0, len(weeks))
	for _, w := range weeks {
		if w.WeekStart <= 0 {
			continue
		}
		valid = append(valid, w)
	}
	if len(valid) > activityWindowWeeks {
		valid = valid[len(valid)-activityWindowWeeks:]
	}

	out := make([]ActivityPoint, 0, len(valid))
	for i, w := range valid {
		commits := w.Total
		if commits < 0 {
			commits = 0
		}
		out = append(out, ActivityPoint{
			Label:   fmt.Sprintf("Week %d", i+1),
			Date:    time.Unix(w.WeekStart, 0).UTC().Format("Jan 2"),
			Commits: commits,
		})
	}
	return out
}

// IssueStatistics counts issues whose state is exactly "open" or exactly
// "closed"; records with any other state are excluded from all three
// counts.
func IssueStatistics(issues []domain.IssueRecord) IssueStats {
	var stats IssueStats
	for _, issue := range issues {
		switch issue.State {
		case domain.IssueStateOpen:
			stats.Open++
		case domain.IssueStateClosed:
			stats.Closed++
		}
	}
	stats.Total = stats.Open + stats.Closed
	return stats
}

// TopLabels flattens all labels across the issue sample, counts
// occurrences by exact name, and keeps the five most frequent. Ties keep
// their first-encounter order.
func TopLabels(issues []domain.IssueRecord) []LabelCount {
	index := make(map[string]int)
	counts := make([]LabelCount, 0)
	for _, issue := range issues {
		for _, label := range issue.Labels {
			if i, ok := index[label.Name]; ok {
				counts[i].Count++
				continue
			}
			index[label.Name] = len(counts)
			counts = append(counts, LabelCount{Name: label.Name, Color: label.Color, Count: 1})
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if len(counts) > topLabelCount {
		counts = counts[:topLabelCount]
	}
	return counts
}
