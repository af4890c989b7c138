package aggregator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tsubasa0119/repo-insights/internal/domain"
	apperrors "github.com/tsubasa0119/repo-insights/internal/errors"
)

// mockFetcher is a mock implementation of the fetcher.Fetcher interface.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Repository(ctx context.Context, ref domain.RepoRef) (*domain.RepositorySummary, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RepositorySummary), args.Error(1)
}

func (m *mockFetcher) Contributors(ctx context.Context, ref domain.RepoRef) ([]domain.Contributor, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contributor), args.Error(1)
}

func (m *mockFetcher) Commits(ctx context.Context, ref domain.RepoRef) ([]domain.CommitRecord, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CommitRecord), args.Error(1)
}

func (m *mockFetcher) Issues(ctx context.Context, ref domain.RepoRef) ([]domain.IssueRecord, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IssueRecord), args.Error(1)
}

func (m *mockFetcher) CommitActivity(ctx context.Context, ref domain.RepoRef) ([]domain.CommitActivityWeek, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CommitActivityWeek), args.Error(1)
}

func (m *mockFetcher) Languages(ctx context.Context, ref domain.RepoRef) (domain.LanguageBytes, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.LanguageBytes), args.Error(1)
}

func healthyMock(ref domain.RepoRef) *mockFetcher {
	f := new(mockFetcher)
	f.On("Repository", mock.Anything, ref).Return(&domain.RepositorySummary{Name: ref.Repo, FullName: ref.String()}, nil)
	f.On("Contributors", mock.Anything, ref).Return([]domain.Contributor{{Login: "alice"}}, nil)
	f.On("Commits", mock.Anything, ref).Return([]domain.CommitRecord{{SHA: "abc123"}}, nil)
	f.On("Issues", mock.Anything, ref).Return([]domain.IssueRecord{{State: "open"}}, nil)
	f.On("CommitActivity", mock.Anything, ref).Return([]domain.CommitActivityWeek{{WeekStart: 1700000000, Total: 3}}, nil)
	f.On("Languages", mock.Anything, ref).Return(domain.LanguageBytes{"Go": 1000}, nil)
	return f
}

func TestAnalyze(t *testing.T) {
	ref := domain.RepoRef{Owner: "acme", Repo: "widget"}

	t.Run("happy path builds a complete snapshot", func(t *testing.T) {
		f := healthyMock(ref)
		agg := New(f)

		snapshot, err := agg.Analyze(context.Background(), ref)
		require.NoError(t, err)
		require.NotNil(t, snapshot)

		assert.Equal(t, ref, snapshot.Ref)
		assert.Equal(t, "acme/widget", snapshot.Repository.FullName)
		assert.Len(t, snapshot.Contributors, 1)
		assert.Len(t, snapshot.Commits, 1)
		assert.Len(t, snapshot.Issues, 1)
		assert.Len(t, snapshot.Activity, 1)
		assert.Equal(t, domain.LanguageBytes{"Go": 1000}, snapshot.Languages)
		assert.False(t, snapshot.FetchedAt.IsZero())
		f.AssertExpectations(t)
	})

	t.Run("all-or-nothing: one failed fetch fails the aggregation", func(t *testing.T) {
		f := new(mockFetcher)
		f.On("Repository", mock.Anything, ref).Return(&domain.RepositorySummary{Name: ref.Repo, FullName: ref.String()}, nil)
		f.On("Contributors", mock.Anything, ref).Return([]domain.Contributor{}, nil)
		f.On("Commits", mock.Anything, ref).Return([]domain.CommitRecord{}, nil)
		f.On("Issues", mock.Anything, ref).Return(nil, apperrors.NewRateLimitedError("quota exhausted"))
		f.On("CommitActivity", mock.Anything, ref).Return([]domain.CommitActivityWeek{}, nil)
		f.On("Languages", mock.Anything, ref).Return(domain.LanguageBytes{}, nil)
		agg := New(f)

		snapshot, err := agg.Analyze(context.Background(), ref)
		assert.Nil(t, snapshot, "no partial snapshot on failure")
		require.Error(t, err)
		assert.True(t, apperrors.IsRateLimited(err))
	})

	t.Run("not found surfaces as not found", func(t *testing.T) {
		f := new(mockFetcher)
		notFound := apperrors.NewNotFoundError("repository acme/widget")
		f.On("Repository", mock.Anything, ref).Return(nil, notFound)
		f.On("Contributors", mock.Anything, ref).Return([]domain.Contributor{}, nil)
		f.On("Commits", mock.Anything, ref).Return([]domain.CommitRecord{}, nil)
		f.On("Issues", mock.Anything, ref).Return([]domain.IssueRecord{}, nil)
		f.On("CommitActivity", mock.Anything, ref).Return([]domain.CommitActivityWeek{}, nil)
		f.On("Languages", mock.Anything, ref).Return(domain.LanguageBytes{}, nil)
		agg := New(f)

		_, err := agg.Analyze(context.Background(), ref)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("invalid identity is rejected before any fetch", func(t *testing.T) {
		f := new(mockFetcher)
		agg := New(f)

		_, err := agg.Analyze(context.Background(), domain.RepoRef{Owner: "", Repo: "widget"})
		require.Error(t, err)
		assert.True(t, apperrors.IsInvalidInput(err))
		f.AssertNotCalled(t, "Repository", mock.Anything, mock.Anything)
	})
}

func TestAnalyzePair(t *testing.T) {
	refA := domain.RepoRef{Owner: "acme", Repo: "widget"}
	refB := domain.RepoRef{Owner: "acme", Repo: "gadget"}

	t.Run("both sides analyzed independently", func(t *testing.T) {
		f := healthyMock(refA)
		f.On("Repository", mock.Anything, refB).Return(&domain.RepositorySummary{Name: refB.Repo, FullName: refB.String()}, nil)
		f.On("Contributors", mock.Anything, refB).Return([]domain.Contributor{}, nil)
		f.On("Commits", mock.Anything, refB).Return([]domain.CommitRecord{}, nil)
		f.On("Issues", mock.Anything, refB).Return([]domain.IssueRecord{}, nil)
		f.On("CommitActivity", mock.Anything, refB).Return([]domain.CommitActivityWeek{}, nil)
		f.On("Languages", mock.Anything, refB).Return(domain.LanguageBytes{}, nil)
		agg := New(f)

		snapA, snapB, err := agg.AnalyzePair(context.Background(), refA, refB)
		require.NoError(t, err)
		assert.Equal(t, "acme/widget", snapA.Repository.FullName)
		assert.Equal(t, "acme/gadget", snapB.Repository.FullName)
	})

	t.Run("failure of either side fails the pair", func(t *testing.T) {
		f := healthyMock(refA)
		notFound := apperrors.NewNotFoundError("repository acme/gadget")
		f.On("Repository", mock.Anything, refB).Return(nil, notFound)
		f.On("Contributors", mock.Anything, refB).Return([]domain.Contributor{}, nil)
		f.On("Commits", mock.Anything, refB).Return([]domain.CommitRecord{}, nil)
		f.On("Issues", mock.Anything, refB).Return([]domain.IssueRecord{}, nil)
		f.On("CommitActivity", mock.Anything, refB).Return([]domain.CommitActivityWeek{}, nil)
		f.On("Languages", mock.Anything, refB).Return(domain.LanguageBytes{}, nil)
		agg := New(f)

		snapA, snapB, err := agg.AnalyzePair(context.Background(), refA, refB)
		require.Error(t, err)
		assert.Nil(t, snapA)
		assert.Nil(t, snapB)
		assert.True(t, apperrors.IsNotFound(err))
	})
}
