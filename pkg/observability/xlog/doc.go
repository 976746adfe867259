// Package xlog 提供守护进程使用的结构化日志。
//
// 基于 log/slog 构建，所有方法强制传入 context.Context，属性只接受 slog.Attr。
// 支持三种输出目标：
//
//   - 标准错误（默认）
//   - 日志文件，按大小轮转（lumberjack）
//   - syslog（与传统 acpid 一致，便于被系统日志收集）
//
// 级别可在运行时通过 [Leveler.SetLevel] 调整，配置热更新时使用。
//
// 示例：
//
//	logger, cleanup, err := xlog.New().
//		SetLevel(xlog.LevelDebug).
//		SetRotation("/var/log/xacpid.log").
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//	logger.Info(ctx, "client connected", xlog.Peer("1234[1000:1000]"))
package xlog
