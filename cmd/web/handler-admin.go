package main

import (
	"github.com/myrjola/crimewatch/internal/contexthelpers"
	"github.com/myrjola/crimewatch/internal/dashboard"
	"github.com/myrjola/crimewatch/internal/errors"
	"github.com/myrjola/crimewatch/internal/metrics"
	"github.com/myrjola/crimewatch/internal/models"
	"github.com/myrjola/crimewatch/internal/wizard"
	"log/slog"
	"net/http"
)

const (
	msgDashboardUnavailable = "Failed to load reports. Please try again."
	toastStatusUpdated      = "Status updated successfully"
	toastStatusFailed       = "Failed to update status"
	toastInvalidStatus      = "Unknown status"
)

type adminTemplateData struct {
	BaseTemplateData

	AdminUser       string
	Reports         []models.Report
	Counts          dashboard.Counts
	Statuses        []models.Status
	Error           string
	// EvidenceBaseURL prefixes the stored evidence filename of a report.
	EvidenceBaseURL string
}

func (app *application) adminDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := adminTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		AdminUser:        contexthelpers.AdminUser(ctx),
		Reports:          nil,
		Counts:           dashboard.Counts{}, //nolint:exhaustruct // filled below
		Statuses:         models.Statuses,
		Error:            "",
		EvidenceBaseURL:  app.evidenceBaseURL,
	}
	status := http.StatusOK
	if err := app.board.Load(ctx); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "load dashboard failed", errors.SlogError(err))
		data.Error = msgDashboardUnavailable
		status = http.StatusBadGateway
	}
	data.Reports = app.board.Reports()
	data.Counts = app.board.Counts()
	app.render(w, r, status, "admin", data)
}

type statusForm struct {
	Status string `schema:"status"`
}

func (app *application) adminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var form statusForm
	if err := app.decodePostForm(r, &form); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	id := r.PathValue("id")

	statusLabel := form.Status
	if _, parseErr := models.ParseStatus(form.Status); parseErr != nil {
		statusLabel = "invalid"
	}
	err := app.board.UpdateStatus(ctx, id, form.Status)
	app.metrics.StatusUpdates.WithLabelValues(statusLabel, metrics.Result(err)).Inc()
	switch {
	case errors.Is(err, models.ErrInvalidStatus):
		app.flash(r, &wizard.Toast{Kind: wizard.ToastError, Text: toastInvalidStatus})
	case err != nil:
		app.logger.LogAttrs(ctx, slog.LevelError, "status update failed",
			slog.String("id", id), errors.SlogError(err))
		app.flash(r, &wizard.Toast{Kind: wizard.ToastError, Text: toastStatusFailed})
	default:
		app.logger.LogAttrs(ctx, slog.LevelInfo, "status updated by admin",
			slog.String("id", id), slog.String("status", form.Status),
			slog.String("admin", contexthelpers.AdminUser(ctx)))
		app.flash(r, &wizard.Toast{Kind: wizard.ToastSuccess, Text: toastStatusUpdated})
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
