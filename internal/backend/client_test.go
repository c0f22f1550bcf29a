package backend_test

import (
	"context"
	"github.com/myrjola/crimewatch/internal/backend"
	"github.com/myrjola/crimewatch/internal/e2etest"
	"github.com/myrjola/crimewatch/internal/models"
	"github.com/myrjola/crimewatch/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
)

func TestClient(t *testing.T) {
	ctx := context.Background()
	fake := e2etest.NewFakeBackend(models.Report{ //nolint:exhaustruct // only relevant fields.
		ID:       "r1",
		UniqueID: "CW123456001",
		Name:     "Jane Doe",
		Status:   models.StatusInReview,
	})
	t.Cleanup(fake.Close)
	client := backend.NewClient(fake.URL+"/", testhelpers.NewLogger(io.Discard))

	t.Run("get report", func(t *testing.T) {
		report, err := client.GetReport(ctx, "CW123456001")
		require.NoError(t, err)
		require.Equal(t, "Jane Doe", report.Name)
		require.Equal(t, models.StatusInReview, report.Status)
	})

	t.Run("missing report", func(t *testing.T) {
		_, err := client.GetReport(ctx, "CW000000000")
		require.ErrorIs(t, err, backend.ErrReportNotFound)
	})

	t.Run("create report with evidence", func(t *testing.T) {
		created, err := client.CreateReport(ctx, backend.NewReport{
			TrackingID: "CW654321123",
			Status:     models.StatusPending,
			Draft: models.Draft{
				Name:         "John Roe",
				Age:          42,
				Mobile:       "1234567890",
				Residence:    "Main Street 1",
				Crime:        "My bicycle was stolen from the yard",
				HasProof:     true,
				Proof:        &models.Attachment{Filename: "bike.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")},
				Traits:       "Tall man with a red cap",
				LocationType: models.LocationTypeManual,
				Location:     "Central Park",
			},
		})
		require.NoError(t, err)
		require.Equal(t, "CW654321123", created.UniqueID)
		require.Equal(t, models.Text("42"), created.Age)
		require.True(t, bool(created.HasProof))
		require.Equal(t, "bike.jpg", created.Proof)
		require.Equal(t, models.StatusPending, created.Status)
		require.Equal(t, []byte("jpeg"), fake.Upload("CW654321123"))
	})

	t.Run("list reports", func(t *testing.T) {
		reports, err := client.ListReports(ctx)
		require.NoError(t, err)
		require.Len(t, reports, 2)
	})

	t.Run("update status", func(t *testing.T) {
		updated, err := client.UpdateStatus(ctx, "r1", models.StatusCompleted)
		require.NoError(t, err)
		require.Equal(t, models.StatusCompleted, updated.Status)
	})

	t.Run("backend failure", func(t *testing.T) {
		fake.FailUpdate(true)
		t.Cleanup(func() { fake.FailUpdate(false) })
		_, err := client.UpdateStatus(ctx, "r1", models.StatusPending)
		require.ErrorIs(t, err, backend.ErrUnexpectedCode)
	})
}
