package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/conneroisu/veneer/internal/identity"
	"github.com/conneroisu/veneer/internal/logging"
)

// DefaultErrorTemplate is the template identifier rendered for error
// dispositions.
const DefaultErrorTemplate = "error"

// fallbackHTML is the dependency-free last resort when the error
// template itself fails to render. It must never depend on the engine,
// the store, or anything else that can fail.
const fallbackHTML = `<!DOCTYPE html>
<html>
<head><title>%d %s</title></head>
<body>
<h1>%d %s</h1>
</body>
</html>
`

// ErrorRenderer renders error pages. Its Render method never panics and
// never fails: a broken or missing error template degrades to the
// hard-coded fallback.
type ErrorRenderer struct {
	engine   Renderer
	template string
	logger   logging.Logger
}

// NewErrorRenderer creates an error renderer using the given template
// identifier, or DefaultErrorTemplate when empty.
func NewErrorRenderer(engine Renderer, template string, logger logging.Logger) *ErrorRenderer {
	if template == "" {
		template = DefaultErrorTemplate
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}

	return &ErrorRenderer{
		engine:   engine,
		template: template,
		logger:   logger.WithComponent("errorpage"),
	}
}

// Render writes an error page for the given status.
func (e *ErrorRenderer) Render(w http.ResponseWriter, r *http.Request, status int) {
	statusText := http.StatusText(status)

	data := map[string]any{
		"status":     status,
		"statusText": statusText,
		"path":       r.URL.Path,
		"username":   "",
	}
	if id := identity.FromContext(r.Context()); id != nil {
		data["username"] = id.Name
	}

	html, err := e.engine.Render(e.template, data)
	if err != nil {
		e.logger.Warn(context.Background(), err, "error template failed, using fallback",
			"template", e.template,
			"status", status)
		html = fmt.Sprintf(fallbackHTML, status, statusText, status, statusText)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, html)
}
