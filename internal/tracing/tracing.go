package tracing

import (
	"fmt"
	"net/http"

	"github.com/openzipkin/zipkin-go"
	zipkinhttp "github.com/openzipkin/zipkin-go/middleware/http"
	"github.com/openzipkin/zipkin-go/reporter"
	httpreporter "github.com/openzipkin/zipkin-go/reporter/http"
)

// Tracer reports server spans to Zipkin.
type Tracer struct {
	reporter reporter.Reporter
	tracer   *zipkin.Tracer
}

// New creates a tracer for serviceName that reports to the Zipkin collector
// at url, for example http://zipkin:9411/api/v2/spans.
func New(serviceName, hostPort, url string) (*Tracer, error) {
	rep := httpreporter.NewReporter(url)

	endpoint, err := zipkin.NewEndpoint(serviceName, hostPort)
	if err != nil {
		rep.Close()
		return nil, fmt.Errorf("create local endpoint: %w", err)
	}

	tracer, err := zipkin.NewTracer(rep, zipkin.WithLocalEndpoint(endpoint))
	if err != nil {
		rep.Close()
		return nil, fmt.Errorf("create tracer: %w", err)
	}

	return &Tracer{reporter: rep, tracer: tracer}, nil
}

// Middleware wraps next with a server span per request.
func (t *Tracer) Middleware(next http.Handler) http.Handler {
	return zipkinhttp.NewServerMiddleware(t.tracer,
		zipkinhttp.TagResponseSize(true),
		zipkinhttp.SpanName("http"),
	)(next)
}

// Close flushes buffered spans.
func (t *Tracer) Close() error {
	return t.reporter.Close()
}
