//go:build !windows

package xsock

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/xacpid/pkg/observability/xlog"
)

// Option 配置 Provisioner 和 Admitter。
type Option func(*options)

type options struct {
	sys           Sys
	logger        xlog.Logger
	meterProvider metric.MeterProvider
}

func defaultOptions() *options {
	return &options{
		sys:           NewSys(),
		logger:        xlog.Default(),
		meterProvider: otel.GetMeterProvider(),
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithSys 替换操作系统原语实现，主要用于测试。nil 被忽略。
func WithSys(sys Sys) Option {
	return func(o *options) {
		if sys != nil {
			o.sys = sys
		}
	}
}

// WithLogger 设置日志记录器。nil 被忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMeterProvider 设置指标提供者，默认使用 otel 全局提供者。nil 被忽略。
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}
