package xrun

import (
	"context"
	"os"

	"github.com/omeyang/xacpid/pkg/observability/xlog"
)

// Option 配置 Group 的选项函数。
type Option func(*groupOptions)

type groupOptions struct {
	logger          xlog.Logger
	name            string
	signals         []os.Signal
	reloadSignals   []os.Signal
	reload          func(ctx context.Context)
	noSignalHandler bool
}

func defaultOptions() *groupOptions {
	return &groupOptions{
		logger: xlog.Default(),
		name:   "xrun",
	}
}

// WithLogger 设置日志记录器，记录服务启停和信号。nil 被忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(o *groupOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName 设置 Group 名称，用于日志。默认 "xrun"。
func WithName(name string) Option {
	return func(o *groupOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithSignals 设置触发退出的信号列表，默认 [DefaultSignals]。
func WithSignals(signals []os.Signal) Option {
	// 设计决策: 在创建时拷贝，避免调用方后续修改切片导致配置漂移。
	copied := append([]os.Signal(nil), signals...)
	return func(o *groupOptions) {
		o.signals = copied
	}
}

// WithReload 注册重载钩子。收到 [ReloadSignals] 中的信号时调用 fn，
// 进程不退出。fn 在信号处理 goroutine 上同步执行，不应长时间阻塞。
//
// 未设置时 SIGHUP 按终止信号处理。
func WithReload(fn func(ctx context.Context), signals ...os.Signal) Option {
	copied := append([]os.Signal(nil), signals...)
	return func(o *groupOptions) {
		o.reload = fn
		o.reloadSignals = copied
	}
}

// WithoutSignalHandler 禁用自动信号处理，调用方需自行管理信号。
func WithoutSignalHandler() Option {
	return func(o *groupOptions) {
		o.noSignalHandler = true
	}
}
