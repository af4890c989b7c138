package fetcher

import (
	"context"

	"github.com/tsubasa0119/repo-insights/internal/domain"
)

// Fetcher defines the interface for retrieving the six resource
// collections of one repository from the upstream API. The aggregator
// receives a Fetcher at construction time; there is no ambient client.
type Fetcher interface {
	// Repository retrieves the repository metadata
	Repository(ctx context.Context, ref domain.RepoRef) (*domain.RepositorySummary, error)

	// Contributors retrieves the upstream-ranked contributor sample
	Contributors(ctx context.Context, ref domain.RepoRef) ([]domain.Contributor, error)

	// Commits retrieves the most-recent-first commit sample
	Commits(ctx context.Context, ref domain.RepoRef) ([]domain.CommitRecord, error)

	// Issues retrieves the open+closed issue sample, excluding pull requests
	Issues(ctx context.Context, ref domain.RepoRef) ([]domain.IssueRecord, error)

	// CommitActivity retrieves the weekly commit-activity buckets in
	// chronological order
	CommitActivity(ctx context.Context, ref domain.RepoRef) ([]domain.CommitActivityWeek, error)

	// Languages retrieves the per-language byte counts
	Languages(ctx context.Context, ref domain.RepoRef) (domain.LanguageBytes, error)
}
