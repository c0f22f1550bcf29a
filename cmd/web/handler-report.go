package main

import (
	"context"
	"github.com/google/uuid"
	"github.com/myrjola/crimewatch/internal/contexthelpers"
	"github.com/myrjola/crimewatch/internal/errors"
	"github.com/myrjola/crimewatch/internal/location"
	"github.com/myrjola/crimewatch/internal/logging"
	"github.com/myrjola/crimewatch/internal/models"
	"github.com/myrjola/crimewatch/internal/repositories"
	"github.com/myrjola/crimewatch/internal/wizard"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
)

const (
	operationAnswer   = "answer"
	operationEvidence = "evidence"
	operationLocation = "location"

	outcomeAccepted = "accepted"
	outcomeIgnored  = "ignored"
	outcomeRejected = "rejected"
	outcomeBusy     = "busy"
)

type reportTemplateData struct {
	BaseTemplateData

	Wizard     *wizard.State
	Step       wizard.Step
	StepNumber int
	StepCount  int
	// Fragment is set when only the chat is rendered.
	Fragment bool
}

func (app *application) newReportTemplateData(r *http.Request, s *wizard.State) reportTemplateData {
	return reportTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Wizard:           s,
		Step:             s.Step(),
		StepNumber:       wizard.Position(s.Field),
		StepCount:        len(wizard.Steps),
		Fragment:         false,
	}
}

// withWizard puts the wizard id of the session into the request context.
func (app *application) withWizard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := app.sessionManager.GetString(r.Context(), string(wizardIDSessionKey))
		if id != "" {
			r = contexthelpers.SetWizardID(r, id)
			r = r.WithContext(logging.WithAttrs(r.Context(), slog.String("wizard_id", id)))
		}
		next(w, r)
	}
}

// report shows the wizard bound to the session and starts a new one when there is none.
func (app *application) report(w http.ResponseWriter, r *http.Request) {
	s, err := app.sessionWizard(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.render(w, r, http.StatusOK, "report", app.newReportTemplateData(r, s))
}

func (app *application) sessionWizard(r *http.Request) (*wizard.State, error) {
	ctx := r.Context()
	if id := contexthelpers.WizardID(ctx); id != "" {
		s, err := app.wizards.Get(ctx, id)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, repositories.ErrWizardNotFound) {
			return nil, errors.Wrap(err, "get session wizard")
		}
	}

	s := wizard.NewState(uuid.NewString())
	if err := app.wizards.Create(ctx, s); err != nil {
		return nil, errors.Wrap(err, "create wizard")
	}
	app.sessionManager.Put(ctx, string(wizardIDSessionKey), s.ID)
	app.logger.LogAttrs(ctx, slog.LevelInfo, "wizard started", slog.String("wizard_id", s.ID))
	return s, nil
}

type answerForm struct {
	Answer string `schema:"answer"`
}

func (app *application) reportAnswer(w http.ResponseWriter, r *http.Request) {
	var form answerForm
	if err := app.decodePostForm(r, &form); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	app.updateWizard(w, r, operationAnswer, func(ctx context.Context, s *wizard.State) (wizard.Result, error) {
		return app.engine.Answer(ctx, s, form.Answer), nil
	})
}

func (app *application) reportEvidence(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("evidence")
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		app.updateWizard(w, r, operationEvidence, func(context.Context, *wizard.State) (wizard.Result, error) {
			return wizard.Result{Accepted: false, NeedsLocation: false, Toast: wizard.OversizedToast()},
				errors.Wrap(wizard.ErrAttachmentTooLarge, "read evidence", slog.Int64("limit", tooLarge.Limit))
		})
		return
	case err != nil:
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	defer func() {
		_ = file.Close()
	}()
	// One byte over the ceiling is enough to reject the attachment.
	data, err := io.ReadAll(io.LimitReader(file, wizard.MaxAttachmentSize+1))
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "read evidence"))
		return
	}
	attachment := models.Attachment{
		Filename:    filepath.Base(header.Filename),
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	app.updateWizard(w, r, operationEvidence, func(ctx context.Context, s *wizard.State) (wizard.Result, error) {
		return app.engine.AttachEvidence(ctx, s, attachment)
	})
}

func (app *application) reportLocation(w http.ResponseWriter, r *http.Request) {
	var fix location.Fix
	if err := app.decodePostForm(r, &fix); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	app.updateWizard(w, r, operationLocation, func(ctx context.Context, s *wizard.State) (wizard.Result, error) {
		return app.engine.ResolveLocation(ctx, s, fix), nil
	})
}

// reportReset discards the wizard of the session. The next visit to the report page starts over.
func (app *application) reportReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if id := contexthelpers.WizardID(ctx); id != "" {
		if err := app.wizards.Delete(ctx, id); err != nil {
			app.serverError(w, r, err)
			return
		}
		app.sessionManager.Remove(ctx, string(wizardIDSessionKey))
		app.logger.LogAttrs(ctx, slog.LevelInfo, "wizard discarded")
	}
	http.Redirect(w, r, "/report", http.StatusSeeOther)
}

// updateWizard runs op on the session wizard while holding its busy mark. A wizard held by another request is shown
// as is and op sees it busy.
func (app *application) updateWizard(
	w http.ResponseWriter,
	r *http.Request,
	operation string,
	op func(context.Context, *wizard.State) (wizard.Result, error),
) {
	ctx := r.Context()
	id := contexthelpers.WizardID(ctx)
	if id == "" {
		http.Redirect(w, r, "/report", http.StatusSeeOther)
		return
	}

	s, err := app.wizards.Acquire(ctx, id)
	switch {
	case errors.Is(err, repositories.ErrWizardNotFound):
		http.Redirect(w, r, "/report", http.StatusSeeOther)
		return
	case errors.Is(err, repositories.ErrWizardBusy):
		if s, err = app.wizards.Get(ctx, id); err != nil {
			app.serverError(w, r, err)
			return
		}
		result, _ := op(ctx, s)
		app.metrics.WizardOperations.WithLabelValues(operation, outcomeBusy).Inc()
		app.respondWizard(w, r, s, result)
		return
	case err != nil:
		app.serverError(w, r, err)
		return
	}

	wasEnded := s.Ended
	result, opErr := op(ctx, s)
	// The busy mark has to be cleared even when the client went away.
	if err = app.wizards.Release(context.WithoutCancel(ctx), s); err != nil {
		app.serverError(w, r, err)
		return
	}

	outcome := outcomeIgnored
	switch {
	case opErr != nil:
		outcome = outcomeRejected
		app.logger.LogAttrs(ctx, slog.LevelInfo, "wizard input rejected",
			slog.String("operation", operation), errors.SlogError(opErr))
	case result.Accepted:
		outcome = outcomeAccepted
	}
	app.metrics.WizardOperations.WithLabelValues(operation, outcome).Inc()

	switch {
	case s.Ended && !wasEnded:
		app.metrics.ReportSubmissions.WithLabelValues("ok").Inc()
	case opErr == nil && result.Toast != nil && result.Toast.Kind == wizard.ToastError:
		app.metrics.ReportSubmissions.WithLabelValues("error").Inc()
	}

	app.respondWizard(w, r, s, result)
}

// respondWizard swaps in the chat for htmx requests. Full page requests are redirected back to the report page
// with the toast kept in the session.
func (app *application) respondWizard(w http.ResponseWriter, r *http.Request, s *wizard.State, result wizard.Result) {
	if app.isHxRequest(w, r) {
		data := app.newReportTemplateData(r, s)
		data.Fragment = true
		if result.Toast != nil {
			data.Toast = result.Toast
		}
		app.renderFragment(w, r, http.StatusOK, "report", "chat", data)
		return
	}
	app.flash(r, result.Toast)
	http.Redirect(w, r, "/report", http.StatusSeeOther)
}
