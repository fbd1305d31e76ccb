package logmanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// sumValue returns the observed value of a counter, optionally for one sink
func sumValue(t *testing.T, rm metricdata.ResourceMetrics, name, sink string) (int64, bool) {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name != name {
				continue
			}
			sum, ok := md.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s should be an int64 sum", name)
			for _, dp := range sum.DataPoints {
				if sink == "" {
					return dp.Value, true
				}
				if v, ok := dp.Attributes.Value(attribute.Key(attrSink)); ok && v.AsString() == sink {
					return dp.Value, true
				}
			}
		}
	}
	return 0, false
}

func TestRegisterMetrics(t *testing.T) {
	m, _, _ := createTestManager(t)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	reg, err := m.RegisterMetrics(mp)
	require.NoError(t, err)
	defer reg.Unregister()

	for i := 0; i < 5; i++ {
		m.Info("metrics", "record", "i", i)
	}
	require.NoError(t, m.Flush(time.Second))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	// 5 records plus the startup record on each sink
	for _, sink := range []string{"file", "console"} {
		accepted, ok := sumValue(t, rm, metricNameAccepted, sink)
		require.True(t, ok, "accepted counter for %s", sink)
		assert.Equal(t, int64(6), accepted)

		written, ok := sumValue(t, rm, metricNameWritten, sink)
		require.True(t, ok)
		assert.Equal(t, int64(6), written)

		dropped, ok := sumValue(t, rm, metricNameDropped, sink)
		require.True(t, ok)
		assert.Zero(t, dropped)
	}

	rotated, ok := sumValue(t, rm, metricNameRotated, "")
	require.True(t, ok)
	assert.Zero(t, rotated)
}

func TestRegisterMetricsWithoutConsole(t *testing.T) {
	m, _, _ := createTestManager(t, "enable_console=false")

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	_, err := m.RegisterMetrics(mp)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	_, ok := sumValue(t, rm, metricNameAccepted, "console")
	assert.False(t, ok, "no console series without a console sink")
	_, ok = sumValue(t, rm, metricNameAccepted, "file")
	assert.True(t, ok)
}

func TestRegisterMetricsNilProvider(t *testing.T) {
	m, _, _ := createTestManager(t)

	_, err := m.RegisterMetrics(nil)
	assert.ErrorContains(t, err, "meter provider cannot be nil")
}
