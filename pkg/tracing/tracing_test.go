package tracing

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/arthur-debert/modkeeper/pkg/errors"
)

func TestProviderWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	p, err := newProvider(&buf, "test")
	require.NoError(t, err)

	_, span := p.provider.Tracer(InstrumentationName).Start(context.Background(), "updates.scan")
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), `"Name":"updates.scan"`)
}

func TestSetupFile(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	path := filepath.Join(t.TempDir(), "traces", "modkeeper.jsonl")
	p, err := Setup(path, "test")
	require.NoError(t, err)

	_, span := Tracer().Start(context.Background(), "manifest.import")
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "manifest.import")
}

func TestSetupDisabled(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	p, err := Setup("", "test")
	require.NoError(t, err)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestRecordError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := provider.Tracer("test").Start(context.Background(), "op")
	RecordError(span, errors.New(errors.ErrConnectivity, "offline"))
	RecordError(span, nil)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events(), 1)
	found := false
	for _, attr := range spans[0].Attributes() {
		if string(attr.Key) == "error.code" {
			assert.Equal(t, "CONNECTIVITY", attr.Value.AsString())
			found = true
		}
	}
	assert.True(t, found)
}
