package main

import (
	"github.com/myrjola/crimewatch/internal/contexthelpers"
	"github.com/myrjola/crimewatch/internal/wizard"
	"net/http"
)

type BaseTemplateData struct {
	CurrentPath string
	Admin       bool
	// Toast is the pending notification, if any.
	Toast *wizard.Toast
}

func (app *application) newBaseTemplateData(r *http.Request) BaseTemplateData {
	ctx := r.Context()
	return BaseTemplateData{
		CurrentPath: contexthelpers.CurrentPath(ctx),
		Admin:       contexthelpers.IsAdmin(ctx),
		Toast:       app.popFlash(r),
	}
}
