package tracker_test

import (
	"context"
	"github.com/myrjola/crimewatch/internal/backend"
	"github.com/myrjola/crimewatch/internal/e2etest"
	"github.com/myrjola/crimewatch/internal/models"
	"github.com/myrjola/crimewatch/internal/testhelpers"
	"github.com/myrjola/crimewatch/internal/tracker"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
)

func states(views []tracker.StageView) []tracker.StageState {
	out := make([]tracker.StageState, len(views))
	for i, v := range views {
		out[i] = v.State
	}
	return out
}

func TestTimeline(t *testing.T) {
	const (
		c = tracker.StageCompleted
		a = tracker.StageActive
		p = tracker.StagePending
	)
	tests := []struct {
		status models.Status
		want   []tracker.StageState
	}{
		{status: models.StatusPending, want: []tracker.StageState{a, p, p, p}},
		{status: models.StatusInReview, want: []tracker.StageState{c, a, p, p}},
		{status: models.StatusUnderInvestigation, want: []tracker.StageState{c, c, a, p}},
		{status: models.StatusCompleted, want: []tracker.StageState{c, c, c, a}},
		{status: "", want: []tracker.StageState{a, p, p, p}},
		{status: "archived", want: []tracker.StageState{a, p, p, p}},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			require.Equal(t, tt.want, states(tracker.Timeline(tt.status)))
		})
	}
}

func TestTracker_FetchStatus(t *testing.T) {
	ctx := context.Background()
	fake := e2etest.NewFakeBackend(models.Report{ //nolint:exhaustruct // only relevant fields.
		ID:       "r1",
		UniqueID: "CW111111111",
		Status:   "",
	})
	t.Cleanup(fake.Close)
	logger := testhelpers.NewLogger(io.Discard)
	tr := tracker.New(backend.NewClient(fake.URL, logger), logger)

	status, err := tr.FetchStatus(ctx, "CW111111111")
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, status.Report.Status)
	require.Equal(t, tracker.StageActive, status.Timeline[0].State)

	_, err = tr.FetchStatus(ctx, "CW999999999")
	require.ErrorIs(t, err, backend.ErrReportNotFound)
}
