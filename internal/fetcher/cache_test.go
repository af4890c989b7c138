package fetcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsubasa0119/repo-insights/internal/domain"
)

// countingFetcher counts upstream calls per resource kind.
type countingFetcher struct {
	mu    sync.Mutex
	calls map[string]int
}

func newCountingFetcher() *countingFetcher {
	return &countingFetcher{calls: make(map[string]int)}
}

func (f *countingFetcher) count(resource string) {
	f.mu.Lock()
	f.calls[resource]++
	f.mu.Unlock()
}

func (f *countingFetcher) callCount(resource string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[resource]
}

func (f *countingFetcher) Repository(ctx context.Context, ref domain.RepoRef) (*domain.RepositorySummary, error) {
	f.count("repository")
	return &domain.RepositorySummary{Name: ref.Repo, FullName: ref.String(), Stars: 42}, nil
}

func (f *countingFetcher) Contributors(ctx context.Context, ref domain.RepoRef) ([]domain.Contributor, error) {
	f.count("contributors")
	return []domain.Contributor{{Login: "alice", Contributions: 7}}, nil
}

func (f *countingFetcher) Commits(ctx context.Context, ref domain.RepoRef) ([]domain.CommitRecord, error) {
	f.count("commits")
	return []domain.CommitRecord{{SHA: "abc123"}}, nil
}

func (f *countingFetcher) Issues(ctx context.Context, ref domain.RepoRef) ([]domain.IssueRecord, error) {
	f.count("issues")
	return []domain.IssueRecord{{State: "open", Labels: []domain.Label{{Name: "bug", Color: "f00"}}}}, nil
}

func (f *countingFetcher) CommitActivity(ctx context.Context, ref domain.RepoRef) ([]domain.CommitActivityWeek, error) {
	f.count("activity")
	return []domain.CommitActivityWeek{{WeekStart: 1700000000, Total: 5}}, nil
}

func (f *countingFetcher) Languages(ctx context.Context, ref domain.RepoRef) (domain.LanguageBytes, error) {
	f.count("languages")
	return domain.LanguageBytes{"Go": 1000}, nil
}

func TestCachedFetcherReadThrough(t *testing.T) {
	upstream := newCountingFetcher()
	cached := NewCached(upstream, time.Minute)
	ref := domain.RepoRef{Owner: "acme", Repo: "widget"}
	ctx := context.Background()

	first, err := cached.Repository(ctx, ref)
	require.NoError(t, err)
	second, err := cached.Repository(ctx, ref)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, upstream.callCount("repository"), "second read must be served from cache")
}

func TestCachedFetcherKeysByRepository(t *testing.T) {
	upstream := newCountingFetcher()
	cached := NewCached(upstream, time.Minute)
	ctx := context.Background()

	_, err := cached.Languages(ctx, domain.RepoRef{Owner: "acme", Repo: "widget"})
	require.NoError(t, err)
	_, err = cached.Languages(ctx, domain.RepoRef{Owner: "acme", Repo: "gadget"})
	require.NoError(t, err)

	assert.Equal(t, 2, upstream.callCount("languages"))
}

func TestCachedFetcherExpiry(t *testing.T) {
	upstream := newCountingFetcher()
	cached := NewCached(upstream, 10*time.Millisecond)
	ref := domain.RepoRef{Owner: "acme", Repo: "widget"}
	ctx := context.Background()

	_, err := cached.Contributors(ctx, ref)
	require.NoError(t, err)

	time.Sleep(25 * time.Millisecond)

	_, err = cached.Contributors(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, 2, upstream.callCount("contributors"), "expired entry must be re-fetched")
}

// Cached collections must never be shared between callers: a snapshot
// must not observe another snapshot's mutations.
func TestCachedFetcherReturnsIndependentCopies(t *testing.T) {
	upstream := newCountingFetcher()
	cached := NewCached(upstream, time.Minute)
	ref := domain.RepoRef{Owner: "acme", Repo: "widget"}
	ctx := context.Background()

	first, err := cached.Issues(ctx, ref)
	require.NoError(t, err)
	first[0].State = "mangled"
	first[0].Labels[0].Name = "mangled"

	second, err := cached.Issues(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "open", second[0].State)
	assert.Equal(t, "bug", second[0].Labels[0].Name)
}

func TestNewCachedDisabledWithoutTTL(t *testing.T) {
	upstream := newCountingFetcher()
	cached := NewCached(upstream, 0)
	ref := domain.RepoRef{Owner: "acme", Repo: "widget"}
	ctx := context.Background()

	_, err := cached.Commits(ctx, ref)
	require.NoError(t, err)
	_, err = cached.Commits(ctx, ref)
	require.NoError(t, err)

	assert.Equal(t, 2, upstream.callCount("commits"))
}
