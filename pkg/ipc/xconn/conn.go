//go:build !windows

package xconn

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"
)

// Conn 注册表中的一条连接。
//
// 实现为带标签的变体：[*Listener] 或 [*Client]，由 [Dispatcher] 按具体类型分发。
type Conn interface {
	// FD 返回底层描述符。
	FD() int

	// Label 返回用于日志的可读标签。
	Label() string

	// Close 关闭连接并释放其描述符，重复调用返回 nil。
	Close() error
}

// 编译时接口检查
var (
	_ Conn = (*Listener)(nil)
	_ Conn = (*Client)(nil)
)

// ReadyFunc 监听描述符可读时的回调。
// 每次回调只应处理一个待接受连接；返回非 nil 错误会终止 [Dispatcher.Run]。
type ReadyFunc func(ctx context.Context, fd int) error

// Listener 监听连接。
type Listener struct {
	fd      int
	onReady ReadyFunc
	closed  bool
}

// NewListener 创建监听连接。onReady 为 nil 时可读事件被忽略。
func NewListener(fd int, onReady ReadyFunc) *Listener {
	return &Listener{fd: fd, onReady: onReady}
}

// FD 返回监听描述符。
func (l *Listener) FD() int { return l.fd }

// Label 返回 "listener"。
func (l *Listener) Label() string { return "listener" }

// Ready 调用就绪回调。
func (l *Listener) Ready(ctx context.Context) error {
	if l.onReady == nil {
		return nil
	}
	return l.onReady(ctx, l.fd)
}

// Close 关闭监听描述符。
func (l *Listener) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	if err := unix.Close(l.fd); err != nil {
		return fmt.Errorf("close listener fd %d: %w", l.fd, err)
	}
	return nil
}

// Client 已准入的数据连接。
type Client struct {
	fd      int
	label   string
	release func()
	closed  bool
}

// NewClient 创建数据连接。
//
// release 在连接关闭时执行一次（可为 nil），用于归还准入时占用的配额。
func NewClient(fd int, label string, release func()) *Client {
	return &Client{fd: fd, label: label, release: release}
}

// FD 返回客户端描述符。
func (c *Client) FD() int { return c.fd }

// Label 返回准入时附加的对端标签，格式为 "pid[uid:gid]"。
func (c *Client) Label() string { return c.label }

// Close 执行释放钩子并关闭描述符。
//
// 设计决策: 先释放配额再关闭描述符。即使 close 失败，连接也已从注册表移除，
// 不会再占用配额；若释放依赖 close 成功，计数器会永久上漂。
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.release != nil {
		c.release()
	}
	if err := unix.Close(c.fd); err != nil {
		return fmt.Errorf("close client %s fd %d: %w", c.label, c.fd, err)
	}
	return nil
}
