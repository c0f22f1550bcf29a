package main

import (
	"github.com/myrjola/crimewatch/internal/backend"
	"github.com/myrjola/crimewatch/internal/errors"
	"github.com/myrjola/crimewatch/internal/logging"
	"github.com/myrjola/crimewatch/internal/tracker"
	"log/slog"
	"net/http"
	"strings"
)

const msgStatusUnavailable = "Unable to fetch the report status. Please try again."

type statusTemplateData struct {
	BaseTemplateData

	TrackingID string
	Status     *tracker.Status
	NotFound   bool
	Error      string
}

// status shows the stage timeline of a report. The tracking id comes from the path or the id query parameter and
// without one only the lookup form is shown.
func (app *application) status(w http.ResponseWriter, r *http.Request) {
	trackingID := r.PathValue("trackingID")
	if trackingID == "" {
		trackingID = strings.TrimSpace(r.URL.Query().Get("id"))
	}
	data := statusTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		TrackingID:       trackingID,
		Status:           nil,
		NotFound:         false,
		Error:            "",
	}
	if trackingID == "" {
		app.render(w, r, http.StatusOK, "status", data)
		return
	}

	ctx := logging.WithAttrs(r.Context(), slog.String("tracking_id", trackingID))
	st, err := app.tracker.FetchStatus(ctx, trackingID)
	switch {
	case errors.Is(err, backend.ErrReportNotFound):
		data.NotFound = true
		app.render(w, r, http.StatusNotFound, "status", data)
	case err != nil:
		app.logger.LogAttrs(ctx, slog.LevelError, "fetch status failed", errors.SlogError(err))
		data.Error = msgStatusUnavailable
		app.render(w, r, http.StatusBadGateway, "status", data)
	default:
		data.Status = &st
		app.render(w, r, http.StatusOK, "status", data)
	}
}
