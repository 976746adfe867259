package xrun

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Group 基于 errgroup + context 管理多个服务的并发运行和协调关闭。
//
// 当任一服务返回错误或 context 被取消时，所有服务都会收到取消信号。
// Go、GoWithName、Cancel 可安全地从多个 goroutine 并发调用；Wait 应仅调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *groupOptions
}

// NewGroup 创建新的 Group，返回的 context 在任一服务返回错误时被取消。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	// 设计决策: nil context 归一化为 context.Background()，
	// 防止 context.WithCancelCause(nil) panic。
	if ctx == nil {
		ctx = context.Background()
	}
	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)
	return &Group{
		eg:       eg,
		ctx:      egCtx,
		causeCtx: causeCtx,
		cancel:   cancel,
		opts:     options,
	}, egCtx
}

// Go 启动一个 goroutine 执行 fn。fn 返回非 nil 错误时取消其他服务。
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		return fn(g.ctx)
	})
}

// GoWithName 与 Go 相同，但会在日志中记录服务名称和退出原因。
func (g *Group) GoWithName(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		attrs := []slog.Attr{slog.String("group", g.opts.name), slog.String("service", name)}
		g.opts.logger.Debug(g.ctx, "service starting", attrs...)
		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			g.opts.logger.Warn(g.ctx, "service exited with error", append(attrs, slog.Any("error", err))...)
		} else {
			g.opts.logger.Debug(g.ctx, "service stopped", attrs...)
		}
		return err
	})
}

// Wait 等待所有 goroutine 完成，返回第一个非 nil 错误。
//
// context.Canceled 被过滤，但 Cancel(cause) 或信号处理设置的退出原因会被返回；
// 没有显式原因时返回 nil。
func (g *Group) Wait() error {
	// 设计决策: CancelCauseFunc 是幂等的，defer 确保在 cause 检查完成后才执行。
	defer g.cancel(nil)

	err := g.eg.Wait()

	// 通过 causeCtx（而非 errgroup 的 ctx）判断取消来源：
	//   - causeCtx 被取消 → Group 主动 Cancel 或父 context 取消
	//   - causeCtx 未被取消 → context.Canceled 来自服务内部，不过滤
	if errors.Is(err, context.Canceled) {
		if g.causeCtx.Err() != nil {
			return g.explicitCause()
		}
		return err
	}
	if err == nil && g.causeCtx.Err() != nil {
		return g.explicitCause()
	}
	return err
}

func (g *Group) explicitCause() error {
	if cause := context.Cause(g.causeCtx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return nil
}

// Cancel 主动取消所有 goroutine，cause 会由 Wait 返回。
//
// cause 不应包装 context.Canceled，否则 Wait 会将其视为普通取消而过滤掉。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Context 返回 Group 的 context。
func (g *Group) Context() context.Context {
	return g.ctx
}

// ----------------------------------------------------------------------------
// 便捷函数
// ----------------------------------------------------------------------------

// runGroup 是 Run/RunWithOptions/RunServices/RunServicesWithOptions 的共享实现。
//
// 默认注册信号监听服务：终止信号通过 Cancel(&SignalError{Signal: sig}) 传播，
// Wait 返回 *SignalError；重载信号调用 WithReload 注册的钩子。
func runGroup(ctx context.Context, opts []Option, setup func(g *Group)) error {
	g, _ := NewGroup(ctx, opts...)
	if !g.opts.noSignalHandler {
		g.Go(g.handleSignals)
	}
	setup(g)
	return g.Wait()
}

func (g *Group) handleSignals(ctx context.Context) error {
	stop, reload := g.opts.signalSets()

	testc := testSigChan(ctx)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, append(slices.Clone(stop), reload...)...)
	defer signal.Stop(sigCh)

	for {
		var sig os.Signal
		select {
		case sig = <-testc:
		case sig = <-sigCh:
		case <-ctx.Done():
			return ctx.Err()
		}

		attrs := []slog.Attr{slog.String("group", g.opts.name), slog.String("signal", sig.String())}
		if slices.Contains(reload, sig) {
			g.opts.logger.Info(ctx, "reload requested", attrs...)
			g.opts.reload(ctx)
			continue
		}
		g.opts.logger.Info(ctx, "received signal", attrs...)
		g.cancel(&SignalError{Signal: sig})
		return nil
	}
}

// Run 监听信号并运行服务，收到终止信号时返回 *SignalError。
func Run(ctx context.Context, services ...func(ctx context.Context) error) error {
	return RunWithOptions(ctx, nil, services...)
}

// RunWithOptions 与 Run 相同，但支持配置选项。
func RunWithOptions(ctx context.Context, opts []Option, services ...func(ctx context.Context) error) error {
	return runGroup(ctx, opts, func(g *Group) {
		for _, svc := range services {
			g.Go(svc)
		}
	})
}

// Service 可管理的服务。Run 阻塞直到 ctx 被取消或发生错误。
type Service interface {
	Run(ctx context.Context) error
}

// ServiceFunc 将函数转换为 Service 接口。
type ServiceFunc func(ctx context.Context) error

// Run 实现 Service 接口。
func (f ServiceFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// NamedService 带名称的服务，RunServices 会用名称记录启停日志。
type NamedService struct {
	Name    string
	Service Service
}

// Named 为服务附加名称。
func Named(name string, svc Service) NamedService {
	return NamedService{Name: name, Service: svc}
}

// Run 实现 Service 接口。
func (n NamedService) Run(ctx context.Context) error {
	if n.Service == nil {
		return ErrNilService
	}
	return n.Service.Run(ctx)
}

// RunServices 运行多个 Service，监听信号并协调关闭。
func RunServices(ctx context.Context, services ...Service) error {
	return RunServicesWithOptions(ctx, nil, services...)
}

// RunServicesWithOptions 与 RunServices 相同，但支持配置选项。
func RunServicesWithOptions(ctx context.Context, opts []Option, services ...Service) error {
	return runGroup(ctx, opts, func(g *Group) {
		for _, svc := range services {
			switch s := svc.(type) {
			case nil:
				g.Go(func(context.Context) error { return ErrNilService })
			case NamedService:
				g.GoWithName(s.Name, s.Run)
			default:
				g.Go(s.Run)
			}
		}
	})
}
