// Package tracker maps a report status onto the fixed lifecycle stages shown to citizens.
package tracker

import (
	"context"
	"github.com/myrjola/crimewatch/internal/errors"
	"github.com/myrjola/crimewatch/internal/models"
	"log/slog"
)

type StageState string

const (
	StageCompleted StageState = "completed"
	StageActive    StageState = "active"
	StagePending   StageState = "pending"
)

type Stage struct {
	Status      models.Status
	Title       string
	Description string
}

// Stages are the lifecycle phases in order.
var Stages = []Stage{ //nolint:gochecknoglobals // fixed lifecycle
	{Status: models.StatusPending, Title: "Complaint Filed", Description: "Your complaint has been successfully registered"},
	{Status: models.StatusInReview, Title: "Initial Review", Description: "Officers are reviewing your complaint"},
	{
		Status:      models.StatusUnderInvestigation,
		Title:       "Investigation",
		Description: "Active investigation in progress",
	},
	{
		Status:      models.StatusCompleted,
		Title:       "Final Action",
		Description: "Taking appropriate action based on findings",
	},
}

type StageView struct {
	Stage
	Number int
	State  StageState
}

// StageIndex is the position of status in Stages. Unknown and absent statuses map to the first stage.
func StageIndex(status models.Status) int {
	for i, s := range Stages {
		if s.Status == status {
			return i
		}
	}
	return 0
}

// Timeline marks each stage completed, active or pending relative to status.
func Timeline(status models.Status) []StageView {
	current := StageIndex(status)
	views := make([]StageView, len(Stages))
	for i, s := range Stages {
		state := StagePending
		switch {
		case i < current:
			state = StageCompleted
		case i == current:
			state = StageActive
		}
		views[i] = StageView{Stage: s, Number: i + 1, State: state}
	}
	return views
}

// Fetcher reads a report by its tracking id.
type Fetcher interface {
	GetReport(ctx context.Context, trackingID string) (models.Report, error)
}

type Tracker struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func New(fetcher Fetcher, logger *slog.Logger) *Tracker {
	return &Tracker{
		fetcher: fetcher,
		logger:  logger.With(slog.String("source", "tracker")),
	}
}

// Status is a fetched report with its timeline.
type Status struct {
	Report   models.Report
	Timeline []StageView
}

// FetchStatus retrieves the report. Missing reports surface the fetcher's not found error.
func (t *Tracker) FetchStatus(ctx context.Context, trackingID string) (Status, error) {
	report, err := t.fetcher.GetReport(ctx, trackingID)
	if err != nil {
		return Status{}, errors.Wrap(err, "fetch status") //nolint:exhaustruct // error
	}
	report.Status = report.Status.Normalize()
	t.logger.LogAttrs(ctx, slog.LevelDebug, "status fetched",
		slog.String("tracking_id", trackingID), slog.String("status", string(report.Status)))
	return Status{Report: report, Timeline: Timeline(report.Status)}, nil
}
