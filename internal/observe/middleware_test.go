package observe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// okHandler answers 200 and captures the request's correlation ID.
type okHandler struct {
	cid string
}

func (h *okHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.cid = CorrelationID(r.Context())
	w.WriteHeader(http.StatusOK)
}

// newInstrumented wires a middleware-wrapped handler to in-memory metric and
// span sinks so tests can inspect what one request produced.
func newInstrumented(t *testing.T, next http.Handler) (http.Handler, *sdkmetric.ManualReader, *tracetest.InMemoryExporter) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	origTP := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(origTP) })

	return Middleware(m)(next), reader, exp
}

// durationAttrs collects the attribute sets recorded on the HTTP duration
// histogram, as key=value string maps.
func durationAttrs(t *testing.T, reader *sdkmetric.ManualReader) []map[string]string {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	met := findMetric(rm, "audiopilot.http.request.duration")
	if met == nil {
		t.Fatal("http duration metric not found")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("http duration metric is not a histogram")
	}

	var out []map[string]string
	for _, dp := range hist.DataPoints {
		attrs := make(map[string]string)
		for _, kv := range dp.Attributes.ToSlice() {
			attrs[string(kv.Key)] = kv.Value.AsString()
		}
		out = append(out, attrs)
	}
	return out
}

func TestMiddleware_CorrelationID(t *testing.T) {
	next := &okHandler{}
	handler, _, _ := newInstrumented(t, next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/interpret_command", nil))

	if next.cid == "" {
		t.Fatal("no correlation ID in the handler's context")
	}
	if len(next.cid) != 32 {
		t.Errorf("correlation ID length = %d, want 32 hex chars", len(next.cid))
	}
	if got := rec.Header().Get("X-Correlation-ID"); got != next.cid {
		t.Errorf("X-Correlation-ID = %q, want %q", got, next.cid)
	}
}

func TestMiddleware_JoinsIncomingTrace(t *testing.T) {
	next := &okHandler{}
	handler, _, _ := newInstrumented(t, next)

	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	req := httptest.NewRequest("POST", "/chat", nil)
	req.Header.Set("traceparent", "00-"+traceID+"-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if next.cid != traceID {
		t.Errorf("correlation ID = %q, want the caller's trace ID %q", next.cid, traceID)
	}
	if got := rec.Header().Get("X-Correlation-ID"); got != traceID {
		t.Errorf("X-Correlation-ID = %q, want %q", got, traceID)
	}
}

func TestMiddleware_ServerSpan(t *testing.T) {
	handler, _, exp := newInstrumented(t, &okHandler{})

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", nil))

	spans := exp.GetSpans()
	if len(spans) == 0 {
		t.Fatal("no span recorded")
	}
	if spans[0].Name != "HTTP GET /healthz" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "HTTP GET /healthz")
	}
}

func TestMiddleware_SpanCarriesStatusCode(t *testing.T) {
	handler, _, exp := newInstrumented(t, http.NotFoundHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	spans := exp.GetSpans()
	if len(spans) == 0 {
		t.Fatal("no span recorded")
	}
	found := false
	for _, a := range spans[0].Attributes {
		if string(a.Key) == "http.response.status_code" && a.Value.AsInt64() == 404 {
			found = true
		}
	}
	if !found {
		t.Error("span missing http.response.status_code=404")
	}
}

func TestMiddleware_RecordsDurationWithRawPath(t *testing.T) {
	// A handler mounted without a mux leaves r.Pattern empty, so the raw
	// path labels the sample.
	handler, reader, _ := newInstrumented(t, &okHandler{})

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/plain", nil))

	points := durationAttrs(t, reader)
	if len(points) != 1 {
		t.Fatalf("data points = %d, want 1", len(points))
	}
	if points[0]["method"] != "GET" || points[0]["path"] != "/plain" {
		t.Errorf("attributes = %v, want method=GET path=/plain", points[0])
	}
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	// Requests routed through a mux must be labelled by the route pattern,
	// not the concrete path, or every transcript ID becomes its own series.
	mux := http.NewServeMux()
	mux.Handle("GET /get_transcription/{id}", &okHandler{})
	handler, reader, _ := newInstrumented(t, mux)

	for _, path := range []string{"/get_transcription/ep-101", "/get_transcription/ep-102"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	points := durationAttrs(t, reader)
	if len(points) != 1 {
		t.Fatalf("data points = %d, want 1 series for both requests", len(points))
	}
	if points[0]["path"] != "GET /get_transcription/{id}" {
		t.Errorf("path attribute = %q, want the route pattern", points[0]["path"])
	}
}
