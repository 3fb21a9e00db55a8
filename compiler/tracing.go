package compiler

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

// compilePhase names one stage of Driver.Compile's orchestration algorithm,
// used as the span name for that stage so a Jaeger trace of one compilation
// shows the same build-flags -> build-file-manager -> discover-units ->
// invoke-compiler -> assemble-result breakdown the algorithm itself follows.
type compilePhase string

const (
	phaseBuildFlags       compilePhase = "compiler.build_flags"
	phaseBuildFileManager compilePhase = "compiler.build_file_manager"
	phaseDiscoverUnits    compilePhase = "compiler.discover_units"
	phaseInvokeCompiler   compilePhase = "compiler.invoke"
	phaseAssembleResult   compilePhase = "compiler.assemble_result"
)

func newJaegerExporter() (tracesdk.SpanExporter, error) {
	exp, err := jaeger.New(
		jaeger.WithCollectorEndpoint(jaeger.WithEndpoint("http://localhost:14268/api/traces")),
	)
	if err != nil {
		return nil, err
	}
	return exp, nil
}

// InitTracerProvider sets up the jaeger-backed TracerProvider every
// CompilerDriver span is recorded against. Compilation tests that do not
// care about tracing can skip calling this; startPhase degrades to the
// global no-op TracerProvider OpenTelemetry installs by default.
func InitTracerProvider(log logr.Logger) (*tracesdk.TracerProvider, error) {
	exp, err := newJaegerExporter()
	if err != nil {
		log.Error(err, "failed to create jaeger exporter")
		return nil, err
	}

	tp := tracesdk.NewTracerProvider(
		tracesdk.WithSampler(tracesdk.AlwaysSample()),
		tracesdk.WithBatcher(exp),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("jcth-compiler-driver"),
		)),
	)

	otel.SetTracerProvider(tp)

	return tp, nil
}

// Shutdown flushes and tears down a TracerProvider built by
// InitTracerProvider, bounding the flush to 5s so a stuck collector cannot
// hang a test's cleanup.
func Shutdown(ctx context.Context, log logr.Logger, tp *tracesdk.TracerProvider) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	if err := tp.Shutdown(ctx); err != nil {
		log.Error(err, "error shutting down tracer provider")
	}
}

// startPhase opens a span named after one Driver.Compile stage and sets
// only the attributes passed in attrs; it adds none of its own. Call sites
// attach stage-specific attributes on top.
func startPhase(ctx context.Context, phase compilePhase, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := otel.Tracer("jcth/compiler").Start(ctx, string(phase))
	span.SetAttributes(attrs...)
	return ctx, span
}
