package xlog

import (
	"io"
	"sync/atomic"
)

// globalLogger 全局 Logger 实例（并发安全）
//
// 定位：命令行入口和测试。库代码应通过选项显式注入 Logger。
var globalLogger atomic.Pointer[LoggerWithLevel]

// Default 返回全局默认 Logger，首次调用时惰性创建（stderr，Info，text）。
func Default() LoggerWithLevel {
	if l := globalLogger.Load(); l != nil {
		return *l
	}
	// 默认参数不会失败
	logger, _, _ := New().Build() //nolint:errcheck // 默认配置无错误路径
	globalLogger.CompareAndSwap(nil, &logger)
	return *globalLogger.Load()
}

// SetDefault 替换全局默认 Logger，nil 被忽略
func SetDefault(l LoggerWithLevel) {
	if l == nil {
		return
	}
	globalLogger.Store(&l)
}

// Discard 返回丢弃所有输出的 Logger，用于测试
func Discard() LoggerWithLevel {
	logger, _, _ := New().SetOutput(io.Discard).Build() //nolint:errcheck // 固定参数无错误路径
	return logger
}
