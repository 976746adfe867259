// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展，支持文件轮转和 syslog 输出
//
// 准入指标直接使用 OpenTelemetry metric API，由 xsock 记录。
package observability
