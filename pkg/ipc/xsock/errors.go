package xsock

import (
	"errors"
	"fmt"
)

// 错误分类。
var (
	// ErrFatal 致命错误，进程应以状态 1 退出。
	ErrFatal = errors.New("xsock: fatal")

	// ErrAbandoned 端点被放弃，守护进程在没有客户端端点的情况下继续运行。
	ErrAbandoned = errors.New("xsock: endpoint abandoned")

	// ErrAcceptStreak 连续 accept 失败达到上限，同时满足 errors.Is(err, ErrFatal)。
	ErrAcceptStreak = fmt.Errorf("%w: too many accept errors", ErrFatal)
)

// 具体原因。
var (
	// ErrInvalidConfig 配置无效。
	ErrInvalidConfig = errors.New("xsock: invalid config")

	// ErrNilRegistry 未提供注册表。
	ErrNilRegistry = errors.New("xsock: nil registry")

	// ErrNotSocket 套接字路径上存在非套接字文件。
	ErrNotSocket = errors.New("xsock: path exists but is not a socket")

	// ErrPeerCred accept 成功但获取对端凭据失败，新描述符已关闭。
	// 只丢弃该连接，不计入连续 accept 失败。
	ErrPeerCred = errors.New("xsock: peer credentials")

	// ErrPeerCredUnsupported 当前平台无法获取对端凭据。
	ErrPeerCredUnsupported = errors.New("xsock: peer credentials unsupported on this platform")

	// ErrActivation 接管 systemd 传入的描述符失败。
	ErrActivation = errors.New("xsock: socket activation")
)

// fatalf 包装为致命错误，保留原因链。
func fatalf(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrFatal, op, err)
}

// abandonf 包装为放弃端点错误，保留原因链。
func abandonf(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrAbandoned, op, err)
}

// IsFatal 报告 err 是否要求进程以状态 1 退出。
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatal)
}

// IsAbandoned 报告 err 是否表示端点被放弃、守护进程应继续运行。
func IsAbandoned(err error) bool {
	return errors.Is(err, ErrAbandoned)
}
