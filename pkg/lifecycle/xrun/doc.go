// Package xrun 提供基于 errgroup + context 的进程生命周期管理。
//
// # 概述
//
// xrun 基于 Go 官方扩展库 [errgroup] 构建，提供：
//   - 多服务并发运行和协调关闭
//   - 终止信号处理（SIGINT、SIGTERM、SIGQUIT）
//   - 重载信号处理（SIGHUP 调用 [WithReload] 注册的钩子而不退出）
//   - 周期任务（[Ticker]）
//
// # 核心概念
//
// 基于 context 的协调：当任一服务返回错误或收到终止信号时，
// context 会被取消，所有服务应该监听 ctx.Done() 并优雅退出。
//
// # 快速开始
//
//	err := xrun.RunServicesWithOptions(ctx, []xrun.Option{
//	    xrun.WithName("xacpid"),
//	    xrun.WithLogger(logger),
//	    xrun.WithReload(func(ctx context.Context) { reloadConfig(ctx) }),
//	}, dispatcher, watcher)
//	if errors.Is(err, xrun.ErrSignal) {
//	    // 收到终止信号，正常退出
//	}
//
// # 错误处理
//
// Wait 返回第一个非 nil 错误；context.Canceled 被过滤，
// 但 Cancel(cause) 设置的原因（如 [*SignalError]）会被保留。
//
// [errgroup]: https://pkg.go.dev/golang.org/x/sync/errgroup
package xrun
