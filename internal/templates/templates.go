package templates

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/hushboard/hushboard/internal/logutil"
)

//go:embed static/*.tmpl
var static embed.FS

// All holds all page templates for hushboard.
var All *template.Template

// Setup parses the embedded templates and sets a global variable with the output.
func Setup() error {
	var err error
	All, err = template.ParseFS(static, "static/*.tmpl")
	return err
}

// Render executes the named template into w. Execution failures after the
// header is written cannot be unwound, so they are logged and swallowed.
func Render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := All.ExecuteTemplate(w, name, data); err != nil {
		logger := logutil.GetOrDefault(r.Context())
		logger.Error().Err(err).Str("template", name).Msg("Rendering template")
	}
}
