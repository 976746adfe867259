//go:build !windows

package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/omeyang/xacpid/pkg/config/xconf"
	"github.com/omeyang/xacpid/pkg/ipc/xconn"
	"github.com/omeyang/xacpid/pkg/ipc/xsock"
	"github.com/omeyang/xacpid/pkg/lifecycle/xrun"
	"github.com/omeyang/xacpid/pkg/observability/xlog"
	"github.com/omeyang/xacpid/pkg/util/xproc"
	"github.com/omeyang/xacpid/pkg/util/xsys"
)

// daemon 组装端点、准入器和事件循环。
type daemon struct {
	cmd      *cli.Command
	cfg      xconf.Config
	settings xconf.Daemon

	logger   xlog.LoggerWithLevel
	metrics  *meterSet
	reg      *xconn.Registry
	disp     *xconn.Dispatcher
	admitter *xsock.Admitter
	endpoint *xsock.Endpoint
	sysOpts  []xsock.Option

	closeLogger func() error
}

// newLogger 按日志配置构建 logger。
func newLogger(c xconf.LogConfig) (xlog.LoggerWithLevel, func() error, error) {
	b := xlog.New().SetLevel(c.Level).SetFormat(c.Format).SetAddSource(c.Source)
	switch {
	case c.Syslog:
		b.SetSyslog(xproc.ProcessNameOr("xacpid"))
	case c.File != "":
		b.SetRotation(c.File,
			xlog.WithMaxSize(c.MaxSize),
			xlog.WithMaxBackups(c.MaxBackups),
			xlog.WithMaxAge(c.MaxAge),
			xlog.WithCompress(c.Compress))
	}
	return b.Build()
}

// newDaemon 构建运行所需的全部组件，但不创建套接字。
func newDaemon(cmd *cli.Command, cfg xconf.Config, settings xconf.Daemon, extra ...xsock.Option) (*daemon, error) {
	logger, closeLogger, err := newLogger(settings.Log)
	if err != nil {
		return nil, err
	}
	xlog.SetDefault(logger)

	d := &daemon{
		cmd:         cmd,
		cfg:         cfg,
		settings:    settings,
		logger:      logger,
		closeLogger: closeLogger,
		reg:         xconn.NewRegistry(),
	}

	var mp metric.MeterProvider = noop.NewMeterProvider()
	if settings.Metrics.Enabled {
		d.metrics = newMeterSet()
		mp = d.metrics.provider
	}

	d.disp = xconn.NewDispatcher(d.reg, xconn.WithLogger(logger.With(xlog.Component("dispatcher"))))
	d.sysOpts = append([]xsock.Option{
		xsock.WithLogger(logger.With(xlog.Component("xsock"))),
		xsock.WithMeterProvider(mp),
	}, extra...)
	if !settings.Socket.Disabled {
		d.admitter, err = xsock.NewAdmitter(d.reg, settings.Clients.Max, d.sysOpts...)
		if err != nil {
			d.close(context.Background())
			return nil, err
		}
	}
	return d, nil
}

// ensureFileLimit 按客户端上限提升描述符 soft limit，不足时只告警。
func (d *daemon) ensureFileLimit(ctx context.Context, clientMax int) {
	//nolint:gosec // G115: clientMax 已校验为正数
	want := uint64(clientMax) + xsys.Reserve
	soft, err := xsys.EnsureFileLimit(want)
	switch {
	case err != nil:
		d.logger.Warn(ctx, "raise file limit", xlog.Err(err))
	case soft < want:
		d.logger.Warn(ctx, "file limit below client max",
			slog.Uint64("soft", soft), slog.Uint64("want", want))
	default:
		d.logger.Debug(ctx, "file limit", slog.Uint64("soft", soft))
	}
}

// provision 创建或接管客户端端点。
//
// 致命错误原样返回；放弃端点时记录日志并继续运行，与不监听套接字等价。
func (d *daemon) provision(ctx context.Context) error {
	if d.admitter == nil {
		d.logger.Info(ctx, "client socket disabled")
		return nil
	}
	d.ensureFileLimit(ctx, d.settings.Clients.Max)
	p, err := xsock.NewProvisioner(d.settings.Endpoint(), d.reg, d.admitter.OnListenerReady, d.sysOpts...)
	if err != nil {
		return err
	}
	ep, err := p.Provision(ctx)
	switch {
	case err == nil:
		d.endpoint = ep
		return nil
	case xsock.IsAbandoned(err):
		return nil
	default:
		return err
	}
}

// serve 运行事件循环直到收到终止信号或发生致命错误。
func (d *daemon) serve(ctx context.Context) error {
	services := []xrun.Service{xrun.Named("dispatcher", d.disp)}
	if d.cfg != nil {
		w, err := xconf.Watch(d.cfg, func(_ xconf.Config, err error) {
			d.apply(ctx, err)
		}, xconf.WithDebounce(d.settings.Watch.Debounce))
		if err != nil {
			return err
		}
		services = append(services, xrun.Named("config-watcher", w))
	}
	if d.metrics != nil {
		services = append(services, xrun.Named("metrics",
			xrun.ServiceFunc(xrun.Ticker(d.settings.Metrics.Interval, false, d.metrics.report(d.logger)))))
	}

	opts := []xrun.Option{
		xrun.WithName("xacpid"),
		xrun.WithLogger(d.logger),
		xrun.WithReload(d.reload),
	}
	err := xrun.RunServicesWithOptions(ctx, opts, services...)
	if errors.Is(err, xrun.ErrSignal) {
		d.logger.Info(ctx, "shutting down", slog.String("reason", err.Error()))
		return nil
	}
	return err
}

// reload 响应 SIGHUP：重新读取配置文件后应用。
func (d *daemon) reload(ctx context.Context) {
	if d.cfg == nil {
		d.apply(ctx, nil)
		return
	}
	d.apply(ctx, d.cfg.Reload())
}

// apply 应用重载后的配置：日志级别立即生效，客户端上限投递到事件循环。
// 只有这两项支持热更新，其余变更需重启。
func (d *daemon) apply(ctx context.Context, reloadErr error) {
	if reloadErr != nil {
		d.logger.Error(ctx, "reload config, keeping previous settings", xlog.Err(reloadErr))
		return
	}
	next, err := resolve(d.cmd, d.cfg)
	if err != nil {
		d.logger.Error(ctx, "reload config, keeping previous settings", xlog.Err(err))
		return
	}

	d.logger.SetLevel(next.Log.Level)
	if d.admitter != nil {
		limit := next.Clients.Max
		d.ensureFileLimit(ctx, limit)
		post := d.disp.Post(func() {
			if err := d.admitter.SetClientMax(limit); err != nil {
				d.logger.Error(ctx, "update client max", xlog.Err(err))
				return
			}
			d.logger.Info(ctx, "client max updated", xlog.Count(limit),
				slog.Int("nonroot", d.admitter.Quota().Count()))
		})
		if post != nil {
			d.logger.Warn(ctx, "update client max", xlog.Err(post))
		}
	}
	d.logger.Info(ctx, "config reloaded", slog.String("level", next.Log.Level.String()))
}

// close 删除本进程创建的套接字文件，关闭指标和日志输出。
func (d *daemon) close(ctx context.Context) {
	if err := d.endpoint.Cleanup(); err != nil {
		d.logger.Warn(ctx, "remove socket file", xlog.Err(err))
	}
	if d.metrics != nil {
		if err := d.metrics.shutdown(ctx); err != nil {
			d.logger.Warn(ctx, "shutdown metrics", xlog.Err(err))
		}
	}
	if d.closeLogger != nil {
		_ = d.closeLogger()
	}
}
