package main

import (
	"bytes"
	"fmt"
	"github.com/myrjola/crimewatch/internal/contexthelpers"
	"github.com/myrjola/crimewatch/internal/errors"
	"github.com/myrjola/crimewatch/ui"
	"html/template"
	"log/slog"
	"net/http"
)

// pageTemplate returns a template for the given page name.
//
// pageName corresponds to directory inside ui/templates/pages folder. It has to include a template named "page".
func (app *application) pageTemplate(pageName string) (*template.Template, error) {
	patterns := []string{
		"templates/base.gohtml",
		fmt.Sprintf("templates/pages/%s/*.gohtml", pageName),
	}

	// We need to initialize the FuncMap before parsing the files. These will be overridden in the render function.
	t, err := template.New(pageName).Funcs(template.FuncMap{
		"nonce": func() string {
			panic("not implemented")
		},
		"csrf": func() string {
			panic("not implemented")
		},
	}).ParseFS(ui.Files, patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "parse page templates", slog.String("page", pageName))
	}
	return t, nil
}

// render executes the base template of the page.
func (app *application) render(w http.ResponseWriter, r *http.Request, status int, file string, data any) {
	app.renderTemplate(w, r, status, file, "base", data)
}

// renderFragment executes only the named template of the page. htmx requests swap it in.
func (app *application) renderFragment(w http.ResponseWriter, r *http.Request, status int, file, fragment string, data any) {
	app.renderTemplate(w, r, status, file, fragment, data)
}

func (app *application) renderTemplate(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	file string,
	name string,
	data any,
) {
	var (
		err error
		t   *template.Template
	)

	if t, err = app.pageTemplate(file); err != nil {
		app.serverError(w, r, errors.Wrap(err, "parse template", slog.String("template", file)))
		return
	}

	buf := new(bytes.Buffer)
	ctx := r.Context()
	nonce := fmt.Sprintf("nonce=\"%s\"", contexthelpers.CSPNonce(ctx))
	csrf := fmt.Sprintf("<input type=\"hidden\" name=\"csrf_token\" value=\"%s\"/>", contexthelpers.CSRFToken(ctx))
	t.Funcs(template.FuncMap{
		"nonce": func() template.HTMLAttr {
			return template.HTMLAttr(nonce) //nolint:gosec, we trust the nonce since it's not provided by user.
		},
		"csrf": func() template.HTML {
			return template.HTML(csrf) //nolint:gosec, we trust the csrf since it's not provided by user.
		},
	})
	if err = t.ExecuteTemplate(buf, name, data); err != nil {
		app.serverError(w, r, errors.Wrap(err, "execute template",
			slog.String("template", file), slog.String("name", name)))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	_, _ = buf.WriteTo(w)
}

// isHxRequest reports whether htmx issued the request and expects a fragment.
func (app *application) isHxRequest(w http.ResponseWriter, r *http.Request) bool {
	return app.htmx.NewHandler(w, r).Request().HxRequest
}
