package logmanager

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricNameAccepted      = "logmanager.records.accepted"
	metricNameDropped       = "logmanager.records.dropped"
	metricNameWritten       = "logmanager.records.written"
	metricNameWriteFailures = "logmanager.records.write_failures"
	metricNameRotated       = "logmanager.files.rotated"
	metricNameDeleted       = "logmanager.files.deleted"

	attrSink = "sink"
)

// RegisterMetrics exports the pipeline counters as observable counters on
// mp. Values are read from the existing atomics at collection time, so the
// hot path is unchanged. Unregister the returned registration to stop.
func (m *Manager) RegisterMetrics(mp metric.MeterProvider) (metric.Registration, error) {
	if mp == nil {
		return nil, fmtErrorf("meter provider cannot be nil")
	}
	meter := mp.Meter(sourceManager)

	accepted, err := meter.Int64ObservableCounter(metricNameAccepted,
		metric.WithDescription("Records accepted into a sink queue"), metric.WithUnit("{record}"))
	if err != nil {
		return nil, err
	}
	dropped, err := meter.Int64ObservableCounter(metricNameDropped,
		metric.WithDescription("Records dropped on overflow, after shutdown or on abandoned drain"), metric.WithUnit("{record}"))
	if err != nil {
		return nil, err
	}
	written, err := meter.Int64ObservableCounter(metricNameWritten,
		metric.WithDescription("Records written by a sink worker"), metric.WithUnit("{record}"))
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64ObservableCounter(metricNameWriteFailures,
		metric.WithDescription("Sink writes that failed"), metric.WithUnit("{record}"))
	if err != nil {
		return nil, err
	}
	rotated, err := meter.Int64ObservableCounter(metricNameRotated,
		metric.WithDescription("Bucket changes of the rolling file"), metric.WithUnit("{file}"))
	if err != nil {
		return nil, err
	}
	deleted, err := meter.Int64ObservableCounter(metricNameDeleted,
		metric.WithDescription("Files removed by retention"), metric.WithUnit("{file}"))
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := m.Stats()
		channels := []ChannelStats{s.File}
		if s.ConsoleEnabled {
			channels = append(channels, s.Console)
		}
		for _, c := range channels {
			attrs := metric.WithAttributes(attribute.String(attrSink, c.Name))
			o.ObserveInt64(accepted, int64(c.Accepted), attrs)
			o.ObserveInt64(dropped, int64(c.Dropped), attrs)
			o.ObserveInt64(written, int64(c.Written), attrs)
			o.ObserveInt64(failures, int64(c.WriteFailures), attrs)
		}
		o.ObserveInt64(rotated, int64(s.Rotations))
		o.ObserveInt64(deleted, int64(s.Deletions))
		return nil
	}, accepted, dropped, written, failures, rotated, deleted)
}
