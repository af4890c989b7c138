package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsubasa0119/repo-insights/internal/aggregator"
	"github.com/tsubasa0119/repo-insights/internal/domain"
	apperrors "github.com/tsubasa0119/repo-insights/internal/errors"
)

// stubFetcher serves canned snapshots keyed by repository, or a fixed
// error for unknown repositories.
type stubFetcher struct {
	known map[string]bool
	err   error
}

func (f *stubFetcher) fail(ref domain.RepoRef) error {
	if f.known[ref.String()] {
		return nil
	}
	if f.err != nil {
		return f.err
	}
	return apperrors.NewNotFoundError("repository " + ref.String())
}

func (f *stubFetcher) Repository(ctx context.Context, ref domain.RepoRef) (*domain.RepositorySummary, error) {
	if err := f.fail(ref); err != nil {
		return nil, err
	}
	return &domain.RepositorySummary{
		Name:        ref.Repo,
		FullName:    ref.String(),
		Description: "a thing",
		License:     "MIT License",
		Stars:       120,
		Forks:       7,
		Watchers:    9,
		OpenIssues:  2,
	}, nil
}

func (f *stubFetcher) Contributors(ctx context.Context, ref domain.RepoRef) ([]domain.Contributor, error) {
	if err := f.fail(ref); err != nil {
		return nil, err
	}
	return []domain.Contributor{{Login: "alice"}, {Login: "bob"}}, nil
}

func (f *stubFetcher) Commits(ctx context.Context, ref domain.RepoRef) ([]domain.CommitRecord, error) {
	if err := f.fail(ref); err != nil {
		return nil, err
	}
	return []domain.CommitRecord{{SHA: "abc123", Message: "init"}}, nil
}

func (f *stubFetcher) Issues(ctx context.Context, ref domain.RepoRef) ([]domain.IssueRecord, error) {
	if err := f.fail(ref); err != nil {
		return nil, err
	}
	return []domain.IssueRecord{{State: "open"}, {State: "closed"}}, nil
}

func (f *stubFetcher) CommitActivity(ctx context.Context, ref domain.RepoRef) ([]domain.CommitActivityWeek, error) {
	if err := f.fail(ref); err != nil {
		return nil, err
	}
	return []domain.CommitActivityWeek{{WeekStart: 1700000000, Total: 6}}, nil
}

func (f *stubFetcher) Languages(ctx context.Context, ref domain.RepoRef) (domain.LanguageBytes, error) {
	if err := f.fail(ref); err != nil {
		return nil, err
	}
	return domain.LanguageBytes{"Go": 900, "Shell": 100}, nil
}

func newTestRouter(f *stubFetcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return SetupRoutes(NewHandler(aggregator.New(f)))
}

func doRequest(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetAnalytics(t *testing.T) {
	router := newTestRouter(&stubFetcher{known: map[string]bool{"acme/widget": true}})

	w := doRequest(t, router, "/api/v1/repos/acme/widget/analytics")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Repository domain.RepositorySummary `json:"repository"`
			Metrics    struct {
				Issues struct {
					Open   int `json:"open"`
					Closed int `json:"closed"`
					Total  int `json:"total"`
				} `json:"issues"`
				Languages []struct {
					Name    string  `json:"name"`
					Percent float64 `json:"percent"`
				} `json:"languages"`
			} `json:"metrics"`
			Health struct {
				Score int    `json:"score"`
				Grade string `json:"grade"`
			} `json:"health"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, "acme/widget", body.Data.Repository.FullName)
	assert.Equal(t, 1, body.Data.Metrics.Issues.Open)
	assert.Equal(t, 1, body.Data.Metrics.Issues.Closed)
	assert.Equal(t, 2, body.Data.Metrics.Issues.Total)
	require.Len(t, body.Data.Metrics.Languages, 2)
	assert.Equal(t, "Go", body.Data.Metrics.Languages[0].Name)
	assert.InDelta(t, 90.0, body.Data.Metrics.Languages[0].Percent, 0.01)
	assert.GreaterOrEqual(t, body.Data.Health.Score, 0)
	assert.LessOrEqual(t, body.Data.Health.Score, 100)
	assert.NotEmpty(t, body.Data.Health.Grade)
}

func TestGetAnalyticsNotFound(t *testing.T) {
	router := newTestRouter(&stubFetcher{})

	w := doRequest(t, router, "/api/v1/repos/acme/missing/analytics")
	require.Equal(t, http.StatusNotFound, w.Code)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
	assert.NotEmpty(t, body.Error.Message)
}

func TestGetAnalyticsRateLimited(t *testing.T) {
	router := newTestRouter(&stubFetcher{err: apperrors.NewRateLimitedError("quota exhausted")})

	w := doRequest(t, router, "/api/v1/repos/acme/widget/analytics")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestCompareEndpoint(t *testing.T) {
	router := newTestRouter(&stubFetcher{known: map[string]bool{
		"acme/widget": true,
		"acme/gadget": true,
	}})

	w := doRequest(t, router, "/api/v1/compare?a=acme/widget&b=acme/gadget")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Comparison []struct {
				Metric string `json:"metric"`
				ValueA int    `json:"value_a"`
				ValueB int    `json:"value_b"`
			} `json:"comparison"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data.Comparison, 5)
	assert.Equal(t, "Stars", body.Data.Comparison[0].Metric)
	assert.Equal(t, "Contributors", body.Data.Comparison[2].Metric)
}

func TestCompareEndpointRejectsMalformedRefs(t *testing.T) {
	router := newTestRouter(&stubFetcher{known: map[string]bool{"acme/widget": true}})

	w := doRequest(t, router, "/api/v1/compare?a=not-a-ref&b=acme/widget")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHTML(t *testing.T) {
	router := newTestRouter(&stubFetcher{known: map[string]bool{"acme/widget": true}})

	w := doRequest(t, router, "/api/v1/repos/acme/widget/export/html")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "echarts")
}

func TestExportJSON(t *testing.T) {
	router := newTestRouter(&stubFetcher{known: map[string]bool{"acme/widget": true}})

	w := doRequest(t, router, "/api/v1/repos/acme/widget/export/json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	var doc struct {
		ID         string `json:"id"`
		Repository struct {
			FullName string `json:"full_name"`
		} `json:"repository"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "acme/widget", doc.Repository.FullName)
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&stubFetcher{})

	w := doRequest(t, router, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
