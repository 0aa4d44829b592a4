// Copyright 2025 Lily Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package trace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/wire"
	"github.com/lily-ai/lily/pkg/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// ProviderSet installs the global tracer provider.
var ProviderSet = wire.NewSet(ProvideTracerProvider)

// ProvideTracerProvider installs the tracer provider; its cleanup flushes pending spans.
func ProvideTracerProvider(conf Conf) (*sdktrace.TracerProvider, func(), error) {
	return InitTracerProvider(context.Background(), conf)
}

// Conf configures span export.
type Conf struct {
	Enabled bool `mapstructure:"enabled"`
	// Endpoint is host:port for grpc, or a URL for http.
	Endpoint           string            `mapstructure:"endpoint"`
	Protocol           string            `mapstructure:"protocol"` // grpc or http
	ServiceName        string            `mapstructure:"serviceName"`
	ServiceVersion     string            `mapstructure:"serviceVersion"`
	Insecure           bool              `mapstructure:"insecure"`
	Headers            map[string]string `mapstructure:"headers"` // http only
	BatchTimeout       int               `mapstructure:"batchTimeout"`
	ExportTimeout      int               `mapstructure:"exportTimeout"`
	MaxExportBatchSize int               `mapstructure:"maxExportBatchSize"`
	// SampleRatio below 1 enables parent based ratio sampling.
	SampleRatio float64 `mapstructure:"sampleRatio"`
}

// SetDefaults fills zero values.
func (c *Conf) SetDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "lily"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "dev"
	}
	if c.Protocol == "" {
		c.Protocol = "grpc"
	}
	if c.BatchTimeout == 0 {
		c.BatchTimeout = 5
	}
	if c.ExportTimeout == 0 {
		c.ExportTimeout = 30
	}
	if c.MaxExportBatchSize == 0 {
		c.MaxExportBatchSize = 512
	}
	if c.SampleRatio <= 0 || c.SampleRatio > 1 {
		c.SampleRatio = 1
	}
	if c.Endpoint == "" {
		if c.Protocol == "grpc" {
			c.Endpoint = "localhost:4317"
		} else {
			c.Endpoint = "localhost:4318"
		}
	}
}

// InitPropagator installs W3C trace context and baggage propagation.
func InitPropagator() {
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)
}

func sampler(ratio float64) sdktrace.Sampler {
	if ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// InitTracerProvider installs the global TracerProvider and propagator.
// When tracing is disabled a provider without exporters is installed so spans
// still carry valid ids for log correlation.
func InitTracerProvider(ctx context.Context, conf Conf) (*sdktrace.TracerProvider, func(), error) {
	InitPropagator()

	if !conf.Enabled {
		tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
		otel.SetTracerProvider(tp)
		return tp, func() { _ = tp.Shutdown(context.Background()) }, nil
	}

	conf.SetDefaults()

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(conf.ServiceName),
			semconv.ServiceVersionKey.String(conf.ServiceVersion),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := createExporter(ctx, conf)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(time.Duration(conf.BatchTimeout)*time.Second),
			sdktrace.WithExportTimeout(time.Duration(conf.ExportTimeout)*time.Second),
			sdktrace.WithMaxExportBatchSize(conf.MaxExportBatchSize),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(conf.SampleRatio)),
	)
	otel.SetTracerProvider(tp)

	log.Infow("tracing enabled",
		"protocol", conf.Protocol,
		"endpoint", conf.Endpoint,
		"service", conf.ServiceName,
	)

	cleanup := func() {
		timeout := min(max(time.Duration(conf.ExportTimeout)*time.Second+5*time.Second, 10*time.Second), 30*time.Second)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				log.Warnw("tracer provider shutdown timed out", "timeout", timeout)
				return
			}
			log.Errorw("failed to shutdown tracer provider", "error", err)
		}
	}
	return tp, cleanup, nil
}

func createExporter(ctx context.Context, conf Conf) (sdktrace.SpanExporter, error) {
	switch conf.Protocol {
	case "grpc":
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(conf.Endpoint)}
		if conf.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		if len(conf.Headers) > 0 {
			opts = append(opts, otlptracegrpc.WithHeaders(conf.Headers))
		}
		opts = append(opts, otlptracegrpc.WithTimeout(time.Duration(conf.ExportTimeout)*time.Second))
		return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	case "http":
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(conf.Endpoint)}
		if conf.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if len(conf.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(conf.Headers))
		}
		opts = append(opts, otlptracehttp.WithTimeout(time.Duration(conf.ExportTimeout)*time.Second))
		return otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	default:
		return nil, fmt.Errorf("unsupported protocol: %s", conf.Protocol)
	}
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
