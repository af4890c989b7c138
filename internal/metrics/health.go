package metrics

import (
	"math"
	"strings"
	"time"

	"github.com/tsubasa0119/repo-insights/internal/domain"
)

// Sub-score weights of the overall score.
const (
	weightActivity      = 0.25
	weightMaintenance   = 0.25
	weightCommunity     = 0.20
	weightDocumentation = 0.15
	weightStability     = 0.15
)

const (
	activityWeekSpan      = 4
	activityTargetCommits = 50
	communityContributors = 20
	communityStars        = 1000
	stabilityAgeDays      = 365
	stabilityStaleDays    = 30
	neutralScore          = 50
)

// Recommendation thresholds, checked per sub-score independently.
const (
	activityThreshold      = 50
	maintenanceThreshold   = 60
	communityThreshold     = 50
	documentationThreshold = 70
	stabilityThreshold     = 60
)

// HealthMetrics holds the five sub-scores, each in [0,100].
type HealthMetrics struct {
	Activity      int `json:"activity"`
	Maintenance   int `json:"maintenance"`
	Community     int `json:"community"`
	Documentation int `json:"documentation"`
	Stability     int `json:"stability"`
}

// HealthReport is the composite health assessment of one snapshot.
type HealthReport struct {
	Score           int           `json:"score"`
	Grade           string        `json:"grade"`
	Color           string        `json:"color"`
	Metrics         HealthMetrics `json:"metrics"`
	Recommendations []string      `json:"recommendations"`
}

var gradeBands = []struct {
	min   int
	grade string
	color string
}{
	{90, "A+", "#16a34a"},
	{80, "A", "#22c55e"},
	{70, "B", "#84cc16"},
	{60, "C", "#eab308"},
	{50, "D", "#f97316"},
	{0, "F", "#ef4444"},
}

// Score computes the health report of a snapshot as of now.
func Score(s *domain.Snapshot) *HealthReport {
	return ScoreAt(s, time.Now())
}

// ScoreAt computes the health report relative to the given reference
// time. It is deterministic for a fixed snapshot and time.
func ScoreAt(s *domain.Snapshot, now time.Time) *HealthReport {
	activity := activityScore(s.Activity)
	maintenance := maintenanceScore(s)
	community := communityScore(s)
	documentation := documentationScore(s.Repository)
	stability := stabilityScore(s.Repository, now)

	overall := int(math.Round(
		weightActivity*activity +
			weightMaintenance*maintenance +
			weightCommunity*community +
			weightDocumentation*documentation +
			weightStability*stability))

	report := &HealthReport{
		Score: overall,
		Metrics: HealthMetrics{
			Activity:      int(math.Round(activity)),
			Maintenance:   int(math.Round(maintenance)),
			Community:     int(math.Round(community)),
			Documentation: int(math.Round(documentation)),
			Stability:     int(math.Round(stability)),
		},
	}
	report.Grade, report.Color = gradeFor(overall)
	report.Recommendations = recommendations(report.Metrics)
	return report
}

// activityScore rewards the commit volume of the last 4 well-formed
// weekly buckets; absent or malformed activity data counts as zero.
func activityScore(weeks []domain.CommitActivityWeek) float64 {
	valid := make([]domain.CommitActivityWeek, 0, len(weeks))
	for _, w := range weeks {
		if w.WeekStart <= 0 {
			continue
		}
		valid = append(valid, w)
	}
	if len(valid) > activityWeekSpan {
		valid = valid[len(valid)-activityWeekSpan:]
	}

	sum := 0
	for _, w := range valid {
		if w.Total > 0 {
			sum += w.Total
		}
	}
	return clampScore(float64(sum) / activityTargetCommits * 100)
}

// maintenanceScore is the closed share of the issue population, using the
// repository's own reported open count plus the closed count observed in
// the fetched sample. No data at all is neutral, not unhealthy.
func maintenanceScore(s *domain.Snapshot) float64 {
	closed := 0
	for _, issue := range s.Issues {
		if issue.State == domain.IssueStateClosed {
			closed++
		}
	}
	open := s.Repository.OpenIssues
	if open < 0 {
		open = 0
	}
	denominator := open + closed
	if denominator == 0 {
		return neutralScore
	}
	return clampScore(float64(closed) / float64(denominator) * 100)
}

func communityScore(s *domain.Snapshot) float64 {
	contributorScore := clampScore(float64(len(s.Contributors)) / communityContributors * 100)
	starScore := clampScore(float64(s.Repository.Stars) / communityStars * 100)
	return (contributorScore + starScore) / 2
}

// documentationScore always includes a flat 30 points for an assumed
// readme-equivalent artifact; upstream presence is not verified.
func documentationScore(r domain.RepositorySummary) float64 {
	score := 30.0
	if strings.TrimSpace(r.Description) != "" {
		score += 40
	}
	if r.License != "" {
		score += 30
	}
	return score
}

// stabilityScore averages repository age against update freshness. If
// either timestamp is unusable, both halves fall back to neutral.
func stabilityScore(r domain.RepositorySummary, now time.Time) float64 {
	if r.CreatedAt.IsZero() || r.UpdatedAt.IsZero() {
		return neutralScore
	}
	ageDays := now.Sub(r.CreatedAt).Hours() / 24
	staleDays := now.Sub(r.UpdatedAt).Hours() / 24
	ageScore := clampScore(ageDays / stabilityAgeDays * 50)
	freshnessScore := clampScore(100 - staleDays/stabilityStaleDays*50)
	return (ageScore + freshnessScore) / 2
}

func gradeFor(score int) (grade, color string) {
	for _, band := range gradeBands {
		if score >= band.min {
			return band.grade, band.color
		}
	}
	last := gradeBands[len(gradeBands)-1]
	return last.grade, last.color
}

// recommendations accumulates one fixed advisory per failing sub-score,
// in fixed sub-score order.
func recommendations(m HealthMetrics) []string {
	out := make([]string, 0)
	if m.Activity < activityThreshold {
		out = append(out, "Commit activity is low; ship changes more regularly to keep the project alive.")
	}
	if m.Maintenance < maintenanceThreshold {
		out = append(out, "A large share of issues remains open; triage and close stale issues.")
	}
	if m.Community < communityThreshold {
		out = append(out, "Community engagement is thin; encourage contributions and promote the project.")
	}
	if m.Documentation < documentationThreshold {
		out = append(out, "Add a description and a license so newcomers can evaluate the project.")
	}
	if m.Stability < stabilityThreshold {
		out = append(out, "The repository looks stale; publish updates to signal active maintenance.")
	}
	return out
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
