// Package observability wires OpenTelemetry metrics (exported through the
// Prometheus registry) and in-process tracing for job handling.
package observability

import (
	"context"
	"log"
	"sync"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "rental-readiness-workers"

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
}

// New installs global meter and tracer providers for serviceName. Metrics are
// registered with the default Prometheus registerer and served on /metrics.
func New(serviceName string) *Observability {
	return NewWithRegisterer(serviceName, promclient.DefaultRegisterer)
}

func NewWithRegisterer(serviceName string, reg promclient.Registerer) *Observability {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	otel.SetTracerProvider(tracerProvider)

	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{tracerProvider: tracerProvider}
	}

	meterProvider := metric.NewMeterProvider(
		metric.WithReader(exporter),
		metric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	return &Observability{
		meterProvider:  meterProvider,
		tracerProvider: tracerProvider,
	}
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}

type instruments struct {
	jobCounter  otelmetric.Int64Counter
	jobDuration otelmetric.Float64Histogram
	scores      otelmetric.Int64Histogram
}

var (
	instOnce sync.Once
	inst     instruments
)

// Instruments come from the global meter, which forwards to whatever
// provider New installs, before or after this first call.
func getInstruments() *instruments {
	instOnce.Do(func() {
		meter := otel.Meter(instrumentationName)
		inst.jobCounter, _ = meter.Int64Counter(
			"jobs.processed",
			otelmetric.WithDescription("Number of jobs processed"),
		)
		inst.jobDuration, _ = meter.Float64Histogram(
			"jobs.duration",
			otelmetric.WithDescription("Job processing duration"),
			otelmetric.WithUnit("ms"),
		)
		inst.scores, _ = meter.Int64Histogram(
			"readiness.score",
			otelmetric.WithDescription("Readiness scores returned to callers"),
		)
	})
	return &inst
}

// StartJobSpan opens a span covering one job.
func StartJobSpan(ctx context.Context, taskType string, jobKey, processInstanceKey int64) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, taskType,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("job.type", taskType),
			attribute.Int64("job.key", jobKey),
			attribute.Int64("process.instance.key", processInstanceKey),
		),
	)
}

// TraceID returns the hex trace id carried by ctx, or "" when there is none.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

func RecordJobProcessed(ctx context.Context, taskType, status string) {
	i := getInstruments()
	if i.jobCounter != nil {
		i.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

func RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	i := getInstruments()
	if i.jobDuration != nil {
		i.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

func RecordScore(ctx context.Context, kind string, score int) {
	i := getInstruments()
	if i.scores != nil {
		i.scores.Record(ctx, int64(score), otelmetric.WithAttributes(attribute.String("kind", kind)))
	}
}
