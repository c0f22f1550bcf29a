package main

import (
	"github.com/myrjola/crimewatch/internal/errors"
	"github.com/myrjola/crimewatch/internal/wizard"
	"log/slog"
	"net/http"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status),
		slog.String("method", method), slog.String("uri", uri))
	http.Error(w, http.StatusText(status), status)
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.clientError(w, r, http.StatusNotFound)
}

// decodePostForm parses the request form into dst using the schema tags of dst.
func (app *application) decodePostForm(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return errors.Wrap(err, "parse form")
	}
	if err := app.formDecoder.Decode(dst, r.PostForm); err != nil {
		return errors.Wrap(err, "decode form")
	}
	return nil
}

// flash stores a toast in the session so that it's shown on the next rendered page.
func (app *application) flash(r *http.Request, toast *wizard.Toast) {
	if toast == nil {
		return
	}
	app.sessionManager.Put(r.Context(), string(toastKindSessionKey), string(toast.Kind))
	app.sessionManager.Put(r.Context(), string(toastTextSessionKey), toast.Text)
}

// popFlash returns and clears the toast stored by flash.
func (app *application) popFlash(r *http.Request) *wizard.Toast {
	ctx := r.Context()
	text := app.sessionManager.PopString(ctx, string(toastTextSessionKey))
	kind := app.sessionManager.PopString(ctx, string(toastKindSessionKey))
	if text == "" {
		return nil
	}
	return &wizard.Toast{Kind: wizard.ToastKind(kind), Text: text}
}
