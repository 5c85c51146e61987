// Package tracing configures OpenTelemetry spans for scans, update applies
// and imports. Tracing is off unless a trace file is configured, in which
// case spans are exported as JSON lines through stdouttrace.
package tracing

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/arthur-debert/modkeeper/pkg/errors"
)

// InstrumentationName names the tracer used by every component.
const InstrumentationName = "github.com/arthur-debert/modkeeper"

// Tracer returns the process-wide modkeeper tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// Provider owns the SDK tracer provider and its output.
type Provider struct {
	provider *sdktrace.TracerProvider
	out      io.Closer
}

// Setup installs a global tracer provider. An empty path installs a no-op
// provider.
func Setup(path, serviceVersion string) (*Provider, error) {
	if path == "" {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return &Provider{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create trace directory")
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "failed to open trace file %s", path)
	}

	p, err := newProvider(file, serviceVersion)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	p.out = file
	otel.SetTracerProvider(p.provider)
	return p, nil
}

func newProvider(w io.Writer, serviceVersion string) (*Provider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to create trace exporter")
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", "modkeeper"),
		attribute.String("service.version", serviceVersion),
	)
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSyncer(exporter),
	)
	return &Provider{provider: provider}, nil
}

// Shutdown flushes spans and closes the trace file.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.provider == nil {
		return nil
	}
	err := p.provider.Shutdown(ctx)
	if p.out != nil {
		if cerr := p.out.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// RecordError marks span as failed.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetAttributes(attribute.String("error.code", string(errors.GetErrorCode(err))))
}
