package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/gorm"

	"github.com/GoAgora/go-agora/internal/config"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})

	return recorder
}

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.Telemetry{})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetupStdout(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.Telemetry{
		Enabled:     true,
		Exporter:    ExporterStdout,
		SampleRatio: 0.5,
	})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestDoInSpan(t *testing.T) {
	recorder := recordSpans(t)
	errRPC := errors.New("rpc down")

	err := DoInSpan(context.Background(), "chain.votes", func(ctx context.Context) error {
		return errRPC
	}, attribute.String("tenant", "ens"))
	require.ErrorIs(t, err, errRPC)

	require.NoError(t, DoInSpan(context.Background(), "db.proposals", func(context.Context) error {
		return nil
	}))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "chain.votes", spans[0].Name())
	assert.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "db.proposals", spans[1].Name())
}

func TestInstrumentDB(t *testing.T) {
	recorder := recordSpans(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, InstrumentDB(db))

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
	assert.NotEmpty(t, recorder.Ended())
}
