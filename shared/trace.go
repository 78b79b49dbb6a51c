package shared

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

type Tracer struct {
	ServiceName  string
	CollectorURL string
	Provider     *sdk.TracerProvider
	tracer       trace.Tracer
}

// NewExporter creates an exporter that just print the span data to stdout.
func NewExporter(w io.Writer) (sdk.SpanExporter, error) {
	return stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
}

// NewResource returns a resource describing this application.
func NewResource(serviceName string) *resource.Resource {
	r, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion("v1.0.0"),
			attribute.String("environment", "local"),
		),
	)
	return r
}

func NewTracerProvider(serviceName string) *sdk.TracerProvider {
	exporter, err := NewExporter(os.Stdout)
	if err != nil {
		panic(err)
	}

	return sdk.NewTracerProvider(
		sdk.WithBatcher(exporter),
		sdk.WithResource(NewResource(serviceName)),
	)
}

func GetDefaultCollectorURL() string {
	return os.Getenv("OTEL_ENDPOINT")
}

func NewTracer(serviceName string, collectorURL string) *Tracer {
	if collectorURL == "" {
		collectorURL = GetDefaultCollectorURL()
	}

	return &Tracer{
		ServiceName:  serviceName,
		CollectorURL: collectorURL,
		Provider:     NewTracerProvider(serviceName),
	}
}

func (t *Tracer) Init() {
	otel.SetTracerProvider(t.Provider)
	t.tracer = otel.Tracer(t.ServiceName)
}

func (t *Tracer) StartSpan(name string, ctx context.Context, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}
