package pipeline

import (
	"fmt"
	"net/http"

	"github.com/conneroisu/veneer/internal/cache"
	"github.com/conneroisu/veneer/internal/capability"
	"github.com/conneroisu/veneer/internal/logging"
	"github.com/conneroisu/veneer/internal/renderctx"
	"github.com/conneroisu/veneer/internal/resolver"
	"github.com/conneroisu/veneer/internal/store"
)

// Renderer is the slice of the templating engine the pipeline consumes.
// Render failures must surface as a distinguishable error; partial
// output must never have been written anywhere.
type Renderer interface {
	Exists(name string) bool
	Render(name string, data any) (string, error)
}

// Options carries the pipeline's dependencies.
type Options struct {
	Engine        Renderer
	Registry      *renderctx.Registry
	Negotiator    cache.Negotiator
	ErrorTemplate string
	Logger        logging.Logger
}

// Pipeline is the response negotiation middleware. It is invoked once
// per inbound request, holds no per-request state, and re-resolves
// templates from scratch every time: freshness over throughput, so
// templates can be edited at runtime.
type Pipeline struct {
	engine     Renderer
	resolver   *resolver.Resolver
	registry   *renderctx.Registry
	negotiator cache.Negotiator
	errorPage  *ErrorRenderer
	logger     logging.Logger
}

// New creates a pipeline from its dependencies.
func New(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger{}
	}

	return &Pipeline{
		engine:     opts.Engine,
		resolver:   resolver.New(opts.Engine),
		registry:   opts.Registry,
		negotiator: opts.Negotiator,
		errorPage:  NewErrorRenderer(opts.Engine, opts.ErrorTemplate, logger),
		logger:     logger.WithComponent("pipeline"),
	}
}

// Middleware wraps the inner API handler with response negotiation.
//
// Non-document requests skip buffering entirely and hit the inner
// handler directly, so API clients observe responses byte-identical to
// running without the pipeline.
func (p *Pipeline) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caps := capability.DetectRequest(r)
		if !caps.RenderAsDocument {
			next.ServeHTTP(w, r)
			return
		}

		ctx, carrier := renderctx.WithCarrier(r.Context())
		r = r.WithContext(ctx)

		rec := newRecorder()
		next.ServeHTTP(rec, r)

		addr := store.ParseAddress(r.URL.Path)
		class := Classify(caps, rec.Status(), addr, p.resolver)

		p.logger.Debug(r.Context(), "classified request",
			"path", r.URL.Path,
			"status", rec.Status(),
			"disposition", class.Disposition.String(),
			"template", class.Template)

		switch class.Disposition {
		case RenderSuccess:
			p.renderSuccess(w, r, rec, addr, carrier, class)

		case RenderError:
			if class.FragmentTarget != "" {
				p.writeFragmentMiss(w, class.FragmentTarget)
				return
			}
			p.errorPage.Render(w, r, class.EffectiveStatus)

		default:
			rec.copyTo(w)
		}
	})
}

// renderSuccess builds the context, renders, and negotiates caching. Any
// failure before the final write emits the buffered original response
// untouched; the pipeline never partially mutates a response it ends up
// not replacing.
func (p *Pipeline) renderSuccess(
	w http.ResponseWriter,
	r *http.Request,
	rec *recorder,
	addr store.Address,
	carrier *renderctx.Carrier,
	class Classification,
) {
	res := &renderctx.Response{
		Status:  rec.Status(),
		Header:  rec.Header().Clone(),
		Body:    rec.body.Bytes(),
		Address: addr,
		Result:  carrier.Result,
	}

	data, err := p.registry.BuildContext(r, res)
	if err != nil {
		p.logger.Warn(r.Context(), err, "context build failed, passing original response through",
			"template", class.Template)
		rec.copyTo(w)
		return
	}

	html, err := p.engine.Render(class.Template, data)
	if err != nil {
		p.logger.Warn(r.Context(), err, "render failed, passing original response through",
			"template", class.Template)
		rec.copyTo(w)
		return
	}

	body := []byte(html)
	decision := p.negotiator.Negotiate(w.Header(), r.Header.Get("If-None-Match"), body)
	if decision.NotModified {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(class.EffectiveStatus)
	_, _ = w.Write(body)
}

// writeFragmentMiss emits the strict fragment-resolution failure: a
// plain-text 500 naming the missing target, never a silent fallback.
func (p *Pipeline) writeFragmentMiss(w http.ResponseWriter, target string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = fmt.Fprintf(w, "fragment template not found for target: %s\n", target)
}
