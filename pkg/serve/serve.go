// Package serve mounts a dispatch table on net/http.
//
// The dispatcher itself is transport-agnostic; this package is the
// thin collaborator that prepares the request path, resolves it, and
// invokes the matched handler. It is deliberately small: embedding
// applications with their own server loop only need Resolve.
package serve

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wayfind-dev/wayfind/pkg/dispatch"
	"github.com/wayfind-dev/wayfind/pkg/routepath"
)

// HandlerFunc is the handler shape the harness knows how to invoke.
// The match carries the captured arguments.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, m *dispatch.Match)

// defaultTracerName is the tracer resolved from the global provider.
const defaultTracerName = "wayfind"

// Handler dispatches requests through a route table.
type Handler struct {
	table    *dispatch.Table
	logger   *slog.Logger
	notFound http.Handler
	tracer   trace.Tracer
	metrics  *metrics
}

// Option configures the harness.
type Option func(*Handler)

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// WithNotFound sets the handler for unmatched paths. Defaults to
// http.NotFound.
func WithNotFound(nf http.Handler) Option {
	return func(h *Handler) { h.notFound = nf }
}

// WithTracerName overrides the OpenTelemetry tracer name.
func WithTracerName(name string) Option {
	return func(h *Handler) { h.tracer = otel.Tracer(name) }
}

// WithMetrics enables Prometheus metrics for dispatched requests.
func WithMetrics() Option {
	return func(h *Handler) { h.metrics = defaultMetrics() }
}

// NewHandler wraps a dispatch table as an http.Handler.
func NewHandler(table *dispatch.Table, opts ...Option) *Handler {
	h := &Handler{
		table:  table,
		logger: slog.Default(),
		tracer: otel.Tracer(defaultTracerName),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.notFound == nil {
		h.notFound = http.NotFoundHandler()
	}
	return h
}

// ServeHTTP normalizes the request path, resolves it, and invokes the
// matched handler. Changed paths redirect to their normalized form; a
// table fault is a 500, never a 404.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	res, err := routepath.Normalize(r.URL.Path)
	if err != nil {
		http.Error(w, "bad request path", http.StatusBadRequest)
		h.observe(r, "", http.StatusBadRequest, start)
		return
	}
	if res.Changed {
		target := res.Path
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		h.observe(r, "", http.StatusMovedPermanently, start)
		return
	}

	ctx, span := h.tracer.Start(r.Context(), "dispatch "+res.Path,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("wayfind.path", res.Path)),
	)
	defer span.End()
	r = r.WithContext(ctx)

	m, err := h.table.Resolve(res.Path)
	if err != nil {
		if dispatch.IsNotFound(err) {
			span.SetStatus(codes.Ok, "")
			h.notFound.ServeHTTP(w, r)
			h.observe(r, "", http.StatusNotFound, start)
			return
		}
		// Configuration fault: surface as a server error, loudly.
		h.logger.Error("route table fault", "path", res.Path, "err", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		http.Error(w, "internal routing error", http.StatusInternalServerError)
		h.observe(r, "", http.StatusInternalServerError, start)
		return
	}

	span.SetAttributes(attribute.String("wayfind.route", m.Pattern))
	if name := m.ViewName(); name != "" {
		span.SetAttributes(attribute.String("wayfind.view", name))
	}

	status := h.invoke(w, r, m)
	span.SetStatus(codes.Ok, "")
	h.observe(r, m.Pattern, status, start)
	h.logger.Debug("dispatched",
		"path", res.Path,
		"route", m.Pattern,
		"view", m.ViewName(),
		"duration", time.Since(start))
}

// invoke calls the matched handler, adapting the common handler
// shapes. Handlers left unbound (a dispatch.Ref without a registry)
// are a server error: the application forgot to register them.
func (h *Handler) invoke(w http.ResponseWriter, r *http.Request, m *dispatch.Match) int {
	switch fn := m.Handler.(type) {
	case HandlerFunc:
		fn(w, r, m)
	case func(http.ResponseWriter, *http.Request, *dispatch.Match):
		fn(w, r, m)
	case http.Handler:
		fn.ServeHTTP(w, r)
	case http.HandlerFunc:
		fn(w, r)
	case dispatch.Ref:
		h.logger.Error("handler not bound", "route", m.Pattern, "ref", string(fn))
		http.Error(w, "internal routing error", http.StatusInternalServerError)
		return http.StatusInternalServerError
	default:
		h.logger.Error("unsupported handler type",
			"route", m.Pattern, "type", fmt.Sprintf("%T", m.Handler))
		http.Error(w, "internal routing error", http.StatusInternalServerError)
		return http.StatusInternalServerError
	}
	return http.StatusOK
}

func (h *Handler) observe(r *http.Request, route string, status int, start time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.observe(route, status, time.Since(start))
}

// NewMux returns a chi mux with the dispatcher mounted as the fallback
// for every path, plus the Prometheus endpoint when metrics are on.
func NewMux(table *dispatch.Table, opts ...Option) *chi.Mux {
	h := NewHandler(table, opts...)
	mux := chi.NewRouter()
	if h.metrics != nil {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.NotFound(h.ServeHTTP)
	return mux
}
