package infra

import (
	"context"
	"log"
	"time"

	"github.com/planhaus/asset-orchestrator/config"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/planhaus/asset-orchestrator"

// Telemetry holds the OTLP trace and metric pipelines plus the counters the
// upload pipeline records into.
type Telemetry struct {
	Tracer        trace.Tracer
	Meter         metric.Meter
	UploadsTotal  metric.Int64Counter
	UploadedBytes metric.Int64Counter

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

func telemetryResource(cfg *config.EnvConfig) *resource.Resource {
	return resource.NewSchemaless(
		attribute.String("service.name", cfg.Grafana.ServiceName),
		attribute.String("deployment.environment", cfg.Environment.Mode),
		attribute.String("service.group", cfg.Environment.Group),
	)
}

// InitTelemetry wires OTLP/HTTP exporters when an endpoint is configured and
// falls back to the no-op globals otherwise, so handlers can always record.
func InitTelemetry(cfg *config.EnvConfig) *Telemetry {
	ctx := context.Background()
	t := &Telemetry{}

	if cfg.Grafana.OTLPEndpoint != "" {
		res := telemetryResource(cfg)

		traceExporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(
			otlptracehttp.WithEndpoint(cfg.Grafana.OTLPEndpoint),
		))
		if err != nil {
			log.Printf("OTLP trace exporter init failed: %v", err)
		} else {
			t.tracerProvider = sdktrace.NewTracerProvider(
				sdktrace.WithBatcher(traceExporter),
				sdktrace.WithResource(res),
			)
			otel.SetTracerProvider(t.tracerProvider)
		}

		metricExporter, err := otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(cfg.Grafana.OTLPEndpoint),
		)
		if err != nil {
			log.Printf("OTLP metric exporter init failed: %v", err)
		} else {
			t.meterProvider = sdkmetric.NewMeterProvider(
				sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
					sdkmetric.WithInterval(30*time.Second))),
				sdkmetric.WithResource(res),
			)
			otel.SetMeterProvider(t.meterProvider)

			if err := runtime.Start(runtime.WithMeterProvider(t.meterProvider)); err != nil {
				log.Printf("runtime instrumentation start failed: %v", err)
			}
		}
	}

	t.Tracer = otel.Tracer(instrumentationName)
	t.Meter = otel.Meter(instrumentationName)

	var err error
	t.UploadsTotal, err = t.Meter.Int64Counter("asset_uploads_total",
		metric.WithDescription("Completed file uploads"))
	if err != nil {
		log.Printf("failed to create uploads counter: %v", err)
	}
	t.UploadedBytes, err = t.Meter.Int64Counter("asset_uploaded_bytes_total",
		metric.WithDescription("Bytes persisted to the object store"))
	if err != nil {
		log.Printf("failed to create uploaded bytes counter: %v", err)
	}

	return t
}

// Shutdown flushes and stops the exporters.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			return err
		}
	}
	if t.meterProvider != nil {
		return t.meterProvider.Shutdown(ctx)
	}
	return nil
}
