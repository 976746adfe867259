//go:build !windows

package main

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/omeyang/xacpid/pkg/observability/xlog"
)

// meterSet 进程内指标：不导出到外部，周期汇总写入日志。
type meterSet struct {
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
}

func newMeterSet() *meterSet {
	reader := sdkmetric.NewManualReader()
	return &meterSet{
		reader:   reader,
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}
}

// snapshot 汇总每个整型计数器所有数据点的和。
func (m *meterSet) snapshot(ctx context.Context) (map[string]int64, error) {
	var rm metricdata.ResourceMetrics
	if err := m.reader.Collect(ctx, &rm); err != nil {
		return nil, err
	}
	totals := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			sum, ok := md.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			totals[md.Name] = total
		}
	}
	return totals, nil
}

// report 返回周期写指标日志的任务。采集失败只记录日志，不终止进程。
func (m *meterSet) report(logger xlog.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		totals, err := m.snapshot(ctx)
		if err != nil {
			logger.Warn(ctx, "collect metrics", xlog.Err(err))
			return nil
		}
		attrs := make([]slog.Attr, 0, len(totals))
		for _, name := range slices.Sorted(maps.Keys(totals)) {
			attrs = append(attrs, slog.Int64(name, totals[name]))
		}
		logger.Info(ctx, "admission metrics", attrs...)
		return nil
	}
}

func (m *meterSet) shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}
