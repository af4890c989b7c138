// Package export builds downloadable documents from analytics snapshots.
package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/tsubasa0119/repo-insights/internal/domain"
	"github.com/tsubasa0119/repo-insights/internal/metrics"
)

// Document is the JSON export of one analyzed repository.
type Document struct {
	ID          string                   `json:"id"`
	GeneratedAt time.Time                `json:"generated_at"`
	FetchedAt   time.Time                `json:"fetched_at"`
	Repository  domain.RepositorySummary `json:"repository"`
	Metrics     *metrics.Summary         `json:"metrics"`
	Health      *metrics.HealthReport    `json:"health"`
}

// Build assembles an export document from a snapshot using the shared
// derivation and scoring engines.
func Build(s *domain.Snapshot) *Document {
	return &Document{
		ID:          uuid.New().String(),
		GeneratedAt: time.Now(),
		FetchedAt:   s.FetchedAt,
		Repository:  s.Repository,
		Metrics:     metrics.Compute(s),
		Health:      metrics.Score(s),
	}
}

// WriteJSON writes the document as indented JSON.
func (d *Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
