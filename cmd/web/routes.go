package main

import (
	htmxmiddleware "github.com/donseba/go-htmx/middleware"
	"github.com/justinas/alice"
	"github.com/myrjola/crimewatch/internal/wizard"
	"github.com/myrjola/crimewatch/ui"
	"io/fs"
	"net/http"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	staticFiles, _ := fs.Sub(ui.Files, "static")
	fileServer := http.FileServerFS(staticFiles)
	mux.Handle("GET /static/", cacheForeverHeaders(http.StripPrefix("/static", fileServer)))

	dynamic := alice.New(app.sessionManager.LoadAndSave, htmxmiddleware.MiddleWare, noSurf, commonContext)
	admin := dynamic.Append(app.requireAdmin)
	// Leave room for the multipart envelope around the evidence.
	maxEvidenceBody := int64(2 * wizard.MaxAttachmentSize) //nolint:mnd // see above
	evidence := alice.New(app.sessionManager.LoadAndSave, htmxmiddleware.MiddleWare, app.limitEvidence(maxEvidenceBody),
		noSurf, commonContext)

	mux.Handle("GET /{$}", dynamic.ThenFunc(app.home))

	mux.Handle("GET /report", dynamic.ThenFunc(app.withWizard(app.report)))
	mux.Handle("POST /report/answer", dynamic.ThenFunc(app.withWizard(app.reportAnswer)))
	mux.Handle("POST /report/evidence", evidence.ThenFunc(app.withWizard(app.reportEvidence)))
	mux.Handle("POST /report/location", dynamic.ThenFunc(app.withWizard(app.reportLocation)))
	mux.Handle("POST /report/reset", dynamic.ThenFunc(app.withWizard(app.reportReset)))

	mux.Handle("GET /status", dynamic.ThenFunc(app.status))
	mux.Handle("GET /status/{trackingID}", dynamic.ThenFunc(app.status))

	mux.Handle("GET /admin", admin.ThenFunc(app.adminDashboard))
	mux.Handle("POST /admin/reports/{id}/status", admin.ThenFunc(app.adminUpdateStatus))

	mux.HandleFunc("GET /api/healthy", app.healthy)
	mux.Handle("GET /metrics", app.requireAdmin(app.metrics.Handler()))

	mux.Handle("/", dynamic.ThenFunc(app.notFound))

	return app.recoverPanic(app.logRequest(secureHeaders(app.instrument(mux))))
}
