package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tsubasa0119/repo-insights/internal/aggregator"
	"github.com/tsubasa0119/repo-insights/internal/domain"
	apperrors "github.com/tsubasa0119/repo-insights/internal/errors"
	"github.com/tsubasa0119/repo-insights/internal/export"
	"github.com/tsubasa0119/repo-insights/internal/metrics"
	"github.com/tsubasa0119/repo-insights/internal/render"
)

// Handler handles API requests
type Handler struct {
	aggregator *aggregator.Aggregator
}

// NewHandler creates a new API handler
func NewHandler(agg *aggregator.Aggregator) *Handler {
	return &Handler{
		aggregator: agg,
	}
}

// analyticsPayload is the response body of one analyzed repository.
type analyticsPayload struct {
	Repository domain.RepositorySummary `json:"repository"`
	Metrics    *metrics.Summary         `json:"metrics"`
	Health     *metrics.HealthReport    `json:"health"`
	FetchedAt  time.Time                `json:"fetched_at"`
}

func buildPayload(s *domain.Snapshot) analyticsPayload {
	return analyticsPayload{
		Repository: s.Repository,
		Metrics:    metrics.Compute(s),
		Health:     metrics.Score(s),
		FetchedAt:  s.FetchedAt,
	}
}

// GetAnalytics returns the full analytics of one repository
// GET /api/v1/repos/:owner/:repo/analytics
func (h *Handler) GetAnalytics(c *gin.Context) {
	ref := domain.RepoRef{Owner: c.Param("owner"), Repo: c.Param("repo")}

	snapshot, err := h.aggregator.Analyze(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": buildPayload(snapshot),
	})
}

// GetHealth returns the health report of one repository
// GET /api/v1/repos/:owner/:repo/health
func (h *Handler) GetHealth(c *gin.Context) {
	ref := domain.RepoRef{Owner: c.Param("owner"), Repo: c.Param("repo")}

	snapshot, err := h.aggregator.Analyze(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": metrics.Score(snapshot),
	})
}

// Compare returns analytics for two repositories plus the comparison table
// GET /api/v1/compare?a=owner/repo&b=owner/repo
func (h *Handler) Compare(c *gin.Context) {
	refA, err := domain.ParseRef(c.Query("a"))
	if err != nil {
		respondError(c, err)
		return
	}
	refB, err := domain.ParseRef(c.Query("b"))
	if err != nil {
		respondError(c, err)
		return
	}

	snapA, snapB, err := h.aggregator.AnalyzePair(c.Request.Context(), refA, refB)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"a":          buildPayload(snapA),
			"b":          buildPayload(snapB),
			"comparison": metrics.Compare(snapA, snapB),
		},
	})
}

// ExportJSON returns the analytics as a downloadable JSON document
// GET /api/v1/repos/:owner/:repo/export/json
func (h *Handler) ExportJSON(c *gin.Context) {
	ref := domain.RepoRef{Owner: c.Param("owner"), Repo: c.Param("repo")}

	snapshot, err := h.aggregator.Analyze(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err)
		return
	}

	doc := export.Build(snapshot)
	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s-%s-insights.json", ref.Owner, ref.Repo))
	c.Status(http.StatusOK)
	if err := doc.WriteJSON(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// ExportHTML returns the rendered chart page
// GET /api/v1/repos/:owner/:repo/export/html
func (h *Handler) ExportHTML(c *gin.Context) {
	ref := domain.RepoRef{Owner: c.Param("owner"), Repo: c.Param("repo")}

	snapshot, err := h.aggregator.Analyze(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err)
		return
	}

	summary := metrics.Compute(snapshot)
	report := metrics.Score(snapshot)

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := render.Page(snapshot, summary, report, c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// HealthCheck returns the health status of the API
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// respondError sends an error response with the code-mapped HTTP status
func respondError(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)

	status := http.StatusInternalServerError
	switch code {
	case apperrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case apperrors.ErrCodeRateLimited:
		status = http.StatusTooManyRequests
	case apperrors.ErrCodeTransport, apperrors.ErrCodeInvalidShape:
		status = http.StatusBadGateway
	}

	message := err.Error()
	if appErr, ok := err.(*apperrors.AppError); ok {
		message = appErr.Message
	}

	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
