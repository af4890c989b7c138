package fetcher

import (
	"context"
	"sync"
	"time"

	"github.com/tsubasa0119/repo-insights/internal/domain"
)

// cachedFetcher is a read-through TTL cache decorating another Fetcher.
// Entries are keyed by resource kind and repository identity; concurrent
// writers for the same key follow last-writer-wins. Cached collections
// are copied on the way out so that two snapshots never share references.
type cachedFetcher struct {
	next Fetcher
	ttl  time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

// NewCached wraps next with a read-through cache. A non-positive ttl
// disables caching entirely.
func NewCached(next Fetcher, ttl time.Duration) Fetcher {
	if ttl <= 0 {
		return next
	}
	return &cachedFetcher{
		next:    next,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *cachedFetcher) lookup(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

func (c *cachedFetcher) store(key string, value any) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Repository retrieves the repository metadata
func (c *cachedFetcher) Repository(ctx context.Context, ref domain.RepoRef) (*domain.RepositorySummary, error) {
	key := "repository/" + ref.String()
	if v, ok := c.lookup(key); ok {
		summary := *v.(*domain.RepositorySummary)
		return &summary, nil
	}
	summary, err := c.next.Repository(ctx, ref)
	if err != nil {
		return nil, err
	}
	c.store(key, summary)
	copied := *summary
	return &copied, nil
}

// Contributors retrieves the upstream-ranked contributor sample
func (c *cachedFetcher) Contributors(ctx context.Context, ref domain.RepoRef) ([]domain.Contributor, error) {
	key := "contributors/" + ref.String()
	if v, ok := c.lookup(key); ok {
		return copySlice(v.([]domain.Contributor)), nil
	}
	contributors, err := c.next.Contributors(ctx, ref)
	if err != nil {
		return nil, err
	}
	c.store(key, contributors)
	return copySlice(contributors), nil
}

// Commits retrieves the most-recent-first commit sample
func (c *cachedFetcher) Commits(ctx context.Context, ref domain.RepoRef) ([]domain.CommitRecord, error) {
	key := "commits/" + ref.String()
	if v, ok := c.lookup(key); ok {
		return copySlice(v.([]domain.CommitRecord)), nil
	}
	commits, err := c.next.Commits(ctx, ref)
	if err != nil {
		return nil, err
	}
	c.store(key, commits)
	return copySlice(commits), nil
}

// Issues retrieves the open+closed issue sample
func (c *cachedFetcher) Issues(ctx context.Context, ref domain.RepoRef) ([]domain.IssueRecord, error) {
	key := "issues/" + ref.String()
	if v, ok := c.lookup(key); ok {
		return copyIssues(v.([]domain.IssueRecord)), nil
	}
	issues, err := c.next.Issues(ctx, ref)
	if err != nil {
		return nil, err
	}
	c.store(key, issues)
	return copyIssues(issues), nil
}

// CommitActivity retrieves the weekly commit-activity buckets
func (c *cachedFetcher) CommitActivity(ctx context.Context, ref domain.RepoRef) ([]domain.CommitActivityWeek, error) {
	key := "activity/" + ref.String()
	if v, ok := c.lookup(key); ok {
		return copySlice(v.([]domain.CommitActivityWeek)), nil
	}
	activity, err := c.next.CommitActivity(ctx, ref)
	if err != nil {
		return nil, err
	}
	c.store(key, activity)
	return copySlice(activity), nil
}

// Languages retrieves the per-language byte counts
func (c *cachedFetcher) Languages(ctx context.Context, ref domain.RepoRef) (domain.LanguageBytes, error) {
	key := "languages/" + ref.String()
	if v, ok := c.lookup(key); ok {
		return copyLanguages(v.(domain.LanguageBytes)), nil
	}
	languages, err := c.next.Languages(ctx, ref)
	if err != nil {
		return nil, err
	}
	c.store(key, languages)
	return copyLanguages(languages), nil
}

func copySlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func copyIssues(in []domain.IssueRecord) []domain.IssueRecord {
	out := copySlice(in)
	for i := range out {
		out[i].Labels = copySlice(out[i].Labels)
		if out[i].ClosedAt != nil {
			t := *out[i].ClosedAt
			out[i].ClosedAt = &t
		}
	}
	return out
}

func copyLanguages(in domain.LanguageBytes) domain.LanguageBytes {
	if in == nil {
		return nil
	}
	out := make(domain.LanguageBytes, len(in))
	for name, bytes := range in {
		out[name] = bytes
	}
	return out
}
