package repositories_test

import (
	"context"
	"github.com/myrjola/crimewatch/internal/models"
	"github.com/myrjola/crimewatch/internal/repositories"
	"github.com/myrjola/crimewatch/internal/sqlite"
	"github.com/myrjola/crimewatch/internal/testhelpers"
	"github.com/myrjola/crimewatch/internal/wizard"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
	"time"
)

func newTestRepository(t *testing.T) *repositories.WizardRepository {
	t.Helper()
	logger := testhelpers.NewLogger(io.Discard)
	db, err := sqlite.NewDatabase(context.Background(), ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return repositories.NewWizardRepository(db, logger)
}

func TestWizardRepository_roundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	s := wizard.NewState("w1")
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.Get(ctx, "w1")
	require.NoError(t, err)
	require.Equal(t, s, got)

	s.Field = wizard.FieldTraits
	s.Draft = models.Draft{ //nolint:exhaustruct // partially filled
		Name:     "Jane Doe",
		Age:      30,
		HasProof: true,
		Proof:    &models.Attachment{Filename: "car.png", ContentType: "image/png", Data: []byte("png")},
	}
	s.Transcript = append(s.Transcript, wizard.Message{Text: "Jane Doe", Sender: wizard.SenderUser, Error: false})
	s.Ended = true
	s.TrackingID = "CW123456789"

	acquired, err := repo.Acquire(ctx, "w1")
	require.NoError(t, err)
	require.False(t, acquired.Busy)
	require.NoError(t, repo.Release(ctx, s))

	got, err = repo.Get(ctx, "w1")
	require.NoError(t, err)
	require.Equal(t, s, got)
	require.Equal(t, []byte("png"), got.Draft.Proof.Data)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, repo.Delete(ctx, "w1"))
	_, err = repo.Get(ctx, "w1")
	require.ErrorIs(t, err, repositories.ErrWizardNotFound)
}

func TestWizardRepository_Acquire(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	require.NoError(t, repo.Create(ctx, wizard.NewState("w1")))

	s, err := repo.Acquire(ctx, "w1")
	require.NoError(t, err)

	_, err = repo.Acquire(ctx, "w1")
	require.ErrorIs(t, err, repositories.ErrWizardBusy)

	observed, err := repo.Get(ctx, "w1")
	require.NoError(t, err)
	require.True(t, observed.Busy)

	require.NoError(t, repo.Release(ctx, s))
	_, err = repo.Acquire(ctx, "w1")
	require.NoError(t, err)

	_, err = repo.Acquire(ctx, "missing")
	require.ErrorIs(t, err, repositories.ErrWizardNotFound)
}

func TestWizardRepository_maintenance(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	require.NoError(t, repo.Create(ctx, wizard.NewState("w1")))
	_, err := repo.Acquire(ctx, "w1")
	require.NoError(t, err)

	released, err := repo.ReleaseStuck(ctx, time.Hour)
	require.NoError(t, err)
	require.Zero(t, released, "fresh leases are kept")

	released, err = repo.ReleaseStuck(ctx, -time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, released)

	purged, err := repo.PurgeStale(ctx, time.Hour)
	require.NoError(t, err)
	require.Zero(t, purged)

	purged, err = repo.PurgeStale(ctx, -time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, purged)
}
