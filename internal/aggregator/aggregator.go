package aggregator

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tsubasa0119/repo-insights/internal/domain"
	"github.com/tsubasa0119/repo-insights/internal/fetcher"
)

// Aggregator combines the six upstream resource collections of one
// repository into an immutable analytics snapshot.
type Aggregator struct {
	fetcher fetcher.Fetcher
}

// New creates a new aggregator over the given fetcher.
func New(f fetcher.Fetcher) *Aggregator {
	return &Aggregator{fetcher: f}
}

// Analyze fetches all six resources concurrently and builds a snapshot.
// The operation is all-or-nothing: if any fetch fails, the first failure
// is surfaced and the results of the remaining fetches are discarded. A
// failed sibling does not cancel the others; each call is bounded by the
// fetcher's own timeout.
func (a *Aggregator) Analyze(ctx context.Context, ref domain.RepoRef) (*domain.Snapshot, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	var (
		summary      *domain.RepositorySummary
		contributors []domain.Contributor
		commits      []domain.CommitRecord
		issues       []domain.IssueRecord
		activity     []domain.CommitActivityWeek
		languages    domain.LanguageBytes
	)

	var eg errgroup.Group
	eg.Go(func() error {
		var err error
		summary, err = a.fetcher.Repository(ctx, ref)
		return err
	})
	eg.Go(func() error {
		var err error
		contributors, err = a.fetcher.Contributors(ctx, ref)
		return err
	})
	eg.Go(func() error {
		var err error
		commits, err = a.fetcher.Commits(ctx, ref)
		return err
	})
	eg.Go(func() error {
		var err error
		issues, err = a.fetcher.Issues(ctx, ref)
		return err
	})
	eg.Go(func() error {
		var err error
		activity, err = a.fetcher.CommitActivity(ctx, ref)
		return err
	})
	eg.Go(func() error {
		var err error
		languages, err = a.fetcher.Languages(ctx, ref)
		return err
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return &domain.Snapshot{
		Ref:          ref,
		FetchedAt:    time.Now(),
		Repository:   *summary,
		Contributors: contributors,
		Commits:      commits,
		Issues:       issues,
		Activity:     activity,
		Languages:    languages,
	}, nil
}

// AnalyzePair runs two full aggregations concurrently for comparison
// mode. The sides are independent; the first failure of either aborts
// the pair.
func (a *Aggregator) AnalyzePair(ctx context.Context, refA, refB domain.RepoRef) (*domain.Snapshot, *domain.Snapshot, error) {
	var snapA, snapB *domain.Snapshot

	var eg errgroup.Group
	eg.Go(func() error {
		var err error
		snapA, err = a.Analyze(ctx, refA)
		return err
	})
	eg.Go(func() error {
		var err error
		snapB, err = a.Analyze(ctx, refB)
		return err
	})

	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return snapA, snapB, nil
}
