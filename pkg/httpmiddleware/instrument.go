package httpmiddleware

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry provides the OpenTelemetry providers. *app.Telemetry of
// go-faster/sdk implements it.
type Telemetry interface {
	TracerProvider() trace.TracerProvider
	MeterProvider() metric.MeterProvider
}

// Instrument wraps requests in an otelhttp server span and records the
// standard HTTP server metrics.
func Instrument(service string, t Telemetry) Middleware {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, service,
			otelhttp.WithTracerProvider(t.TracerProvider()),
			otelhttp.WithMeterProvider(t.MeterProvider()),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
}

// RouteLabel renames the server span after the matched route template and
// labels HTTP metrics with it, keeping ids out of metric cardinality. It must
// run inside the gorilla/mux router (router.Use).
func RouteLabel() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := mux.CurrentRoute(r)
			if route == nil {
				next.ServeHTTP(w, r)
				return
			}
			tmpl, err := route.GetPathTemplate()
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			trace.SpanFromContext(ctx).SetName(r.Method + " " + tmpl)
			if labeler, ok := otelhttp.LabelerFromContext(ctx); ok {
				labeler.Add(attribute.String("http.route", tmpl))
			}
			next.ServeHTTP(w, r)
		})
	}
}
