// Package dashboard holds the admin view of all reports.
package dashboard

import (
	"context"
	"github.com/myrjola/crimewatch/internal/errors"
	"github.com/myrjola/crimewatch/internal/models"
	"log/slog"
	"slices"
	"sync"
)

// Counts are the per status totals. Reports without a known status count as pending.
type Counts struct {
	Total              int
	Pending            int
	InReview           int
	UnderInvestigation int
	Completed          int
}

// PendingPercent is the share of pending reports, 0 when there are none.
func (c Counts) PendingPercent() int {
	if c.Total == 0 {
		return 0
	}
	return c.Pending * 100 / c.Total //nolint:mnd // percent
}

// Count computes the totals of reports. Missing and unknown statuses are counted as pending, the way their rows
// are badged, so the buckets always add up to the total.
func Count(reports []models.Report) Counts {
	c := Counts{Total: len(reports), Pending: 0, InReview: 0, UnderInvestigation: 0, Completed: 0}
	for _, r := range reports {
		switch r.Status.Normalize() {
		case models.StatusPending:
			c.Pending++
		case models.StatusInReview:
			c.InReview++
		case models.StatusUnderInvestigation:
			c.UnderInvestigation++
		case models.StatusCompleted:
			c.Completed++
		}
	}
	return c
}

// Backend is the subset of the report API the dashboard needs.
type Backend interface {
	ListReports(ctx context.Context) ([]models.Report, error)
	UpdateStatus(ctx context.Context, id string, status models.Status) (models.Report, error)
}

// Board is the admin dashboard state. It is safe for concurrent use.
type Board struct {
	backend Backend
	logger  *slog.Logger

	mu      sync.RWMutex
	reports []models.Report
	counts  Counts
}

func NewBoard(backend Backend, logger *slog.Logger) *Board {
	return &Board{ //nolint:exhaustruct // empty until loaded
		backend: backend,
		logger:  logger.With(slog.String("source", "dashboard")),
	}
}

// Load fetches all reports and recomputes the counts. On failure the held state is kept.
func (b *Board) Load(ctx context.Context) error {
	reports, err := b.backend.ListReports(ctx)
	if err != nil {
		return errors.Wrap(err, "list reports")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reports = reports
	b.counts = Count(reports)
	return nil
}

// Reports returns a copy of the held reports.
func (b *Board) Reports() []models.Report {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.reports)
}

func (b *Board) Counts() Counts {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.counts
}

// UpdateStatus changes the status of the report with backend id. The held reports change only once the backend
// accepted the update.
func (b *Board) UpdateStatus(ctx context.Context, id string, status string) error {
	parsed, err := models.ParseStatus(status)
	if err != nil {
		return errors.Wrap(err, "update status")
	}
	if _, err = b.backend.UpdateStatus(ctx, id, parsed); err != nil {
		return errors.Wrap(err, "update status", slog.String("id", id))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.reports, func(r models.Report) bool { return r.ID == id })
	if i < 0 {
		// The backend knows the report even though this board has not loaded it yet.
		return nil
	}
	b.reports[i].Status = parsed
	b.counts = Count(b.reports)
	b.logger.LogAttrs(ctx, slog.LevelInfo, "status updated", slog.String("id", id), slog.String("status", status))
	return nil
}
