package dashboard_test

import (
	"context"
	"github.com/myrjola/crimewatch/internal/backend"
	"github.com/myrjola/crimewatch/internal/dashboard"
	"github.com/myrjola/crimewatch/internal/e2etest"
	"github.com/myrjola/crimewatch/internal/models"
	"github.com/myrjola/crimewatch/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
)

func report(id string, status models.Status) models.Report {
	return models.Report{ //nolint:exhaustruct // only relevant fields.
		ID:       id,
		UniqueID: "CW" + id,
		Status:   status,
	}
}

func TestCount(t *testing.T) {
	counts := dashboard.Count([]models.Report{
		report("1", models.StatusPending),
		report("2", ""),
		report("3", models.StatusInReview),
		report("4", models.StatusUnderInvestigation),
		report("5", models.StatusCompleted),
		report("6", models.StatusCompleted),
	})
	require.Equal(t, dashboard.Counts{Total: 6, Pending: 2, InReview: 1, UnderInvestigation: 1, Completed: 2}, counts)
	require.Equal(t, 33, counts.PendingPercent())
	require.Zero(t, dashboard.Counts{}.PendingPercent()) //nolint:exhaustruct // empty
}

// Rows render a status outside the lifecycle with the Pending badge, so the counts follow.
func TestCount_unknownStatus(t *testing.T) {
	counts := dashboard.Count([]models.Report{
		report("1", "closed"),
		report("2", models.StatusCompleted),
	})
	require.Equal(t, dashboard.Counts{Total: 2, Pending: 1, InReview: 0, UnderInvestigation: 0, Completed: 1}, counts)
	require.Equal(t, counts.Total, counts.Pending+counts.InReview+counts.UnderInvestigation+counts.Completed)
}

func TestBoard(t *testing.T) {
	ctx := context.Background()
	fake := e2etest.NewFakeBackend(
		report("1", ""),
		report("2", models.StatusPending),
		report("3", models.StatusInReview),
	)
	t.Cleanup(fake.Close)
	logger := testhelpers.NewLogger(io.Discard)
	board := dashboard.NewBoard(backend.NewClient(fake.URL, logger), logger)

	require.NoError(t, board.Load(ctx))
	require.Equal(t, 2, board.Counts().Pending)
	require.Len(t, board.Reports(), 3)

	t.Run("success updates held state", func(t *testing.T) {
		require.NoError(t, board.UpdateStatus(ctx, "1", "completed"))
		require.Equal(t, models.StatusCompleted, board.Reports()[0].Status)
		require.Equal(t, 1, board.Counts().Pending)
		require.Equal(t, 1, board.Counts().Completed)
	})

	t.Run("invalid status", func(t *testing.T) {
		err := board.UpdateStatus(ctx, "2", "closed")
		require.ErrorIs(t, err, models.ErrInvalidStatus)
		require.Equal(t, models.StatusPending, board.Reports()[1].Status)
	})

	t.Run("failure leaves held state untouched", func(t *testing.T) {
		fake.FailUpdate(true)
		t.Cleanup(func() { fake.FailUpdate(false) })
		before := board.Counts()
		err := board.UpdateStatus(ctx, "2", "in-review")
		require.Error(t, err)
		require.Equal(t, models.StatusPending, board.Reports()[1].Status)
		require.Equal(t, before, board.Counts())
	})
}
