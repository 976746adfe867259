//go:build !windows

package xconn

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/omeyang/xacpid/pkg/observability/xlog"
)

// 默认配置值。
const (
	// DefaultPollInterval 单轮 poll 的最长等待时间，决定响应取消和投递的延迟上限。
	DefaultPollInterval = 250 * time.Millisecond

	// DefaultQueueSize 投递队列容量。
	DefaultQueueSize = 64

	// DefaultReadBufferSize 排空客户端数据时使用的缓冲区大小。
	DefaultReadBufferSize = 4096

	// maxReadsPerEvent 单次可读事件最多读取次数，防止单个客户端饿死其他连接。
	maxReadsPerEvent = 16
)

// Option 分发器配置选项。
type Option func(*dispatcherOptions)

type dispatcherOptions struct {
	logger         xlog.Logger
	pollInterval   time.Duration
	queueSize      int
	readBufferSize int
}

func defaultDispatcherOptions() *dispatcherOptions {
	return &dispatcherOptions{
		logger:         xlog.Default(),
		pollInterval:   DefaultPollInterval,
		queueSize:      DefaultQueueSize,
		readBufferSize: DefaultReadBufferSize,
	}
}

// WithLogger 设置日志记录器，nil 被忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(o *dispatcherOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPollInterval 设置单轮 poll 超时，非正值被忽略。
func WithPollInterval(d time.Duration) Option {
	return func(o *dispatcherOptions) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithQueueSize 设置投递队列容量，非正值被忽略。
func WithQueueSize(n int) Option {
	return func(o *dispatcherOptions) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

// WithReadBufferSize 设置客户端读缓冲区大小，非正值被忽略。
func WithReadBufferSize(n int) Option {
	return func(o *dispatcherOptions) {
		if n > 0 {
			o.readBufferSize = n
		}
	}
}

// Dispatcher 单线程事件分发器。
//
// Run 所在的 goroutine 是唯一访问 Registry 和回调的 goroutine；
// 回调之间不会并发，也不会重入。
type Dispatcher struct {
	reg     *Registry
	opts    *dispatcherOptions
	posted  chan func()
	buf     []byte
	running atomic.Bool
}

// NewDispatcher 创建分发器。
func NewDispatcher(reg *Registry, opts ...Option) *Dispatcher {
	o := defaultDispatcherOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return &Dispatcher{
		reg:    reg,
		opts:   o,
		posted: make(chan func(), o.queueSize),
		buf:    make([]byte, o.readBufferSize),
	}
}

// Registry 返回分发器使用的注册表。
func (d *Dispatcher) Registry() *Registry {
	return d.reg
}

// Post 把 fn 投递到事件循环 goroutine 执行。可从任意 goroutine 调用，不阻塞。
func (d *Dispatcher) Post(fn func()) error {
	if fn == nil {
		return nil
	}
	select {
	case d.posted <- fn:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run 运行事件循环直到 ctx 取消或监听回调返回错误。
//
// 返回前关闭注册表中的全部连接。ctx 取消时返回 ctx.Err()。
func (d *Dispatcher) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer d.running.Store(false)
	defer func() {
		if err := d.reg.CloseAll(); err != nil {
			d.opts.logger.Warn(ctx, "close connections", xlog.Err(err))
		}
	}()

	timeout := int(d.opts.pollInterval / time.Millisecond)
	var fds []unix.PollFd
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.drainPosted()

		fds = d.pollSet(fds[:0])
		if len(fds) == 0 {
			if err := d.idle(ctx); err != nil {
				return err
			}
			continue
		}

		n, err := unix.Poll(fds, timeout)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("%w: %w", ErrPoll, err)
		}
		if n == 0 {
			continue
		}
		for _, pfd := range fds {
			if pfd.Revents == 0 {
				continue
			}
			if err := d.dispatch(ctx, int(pfd.Fd), pfd.Revents); err != nil {
				return err
			}
		}
	}
}

// pollSet 按登记顺序构造 poll 集合。
func (d *Dispatcher) pollSet(fds []unix.PollFd) []unix.PollFd {
	d.reg.Each(func(c Conn) bool {
		//nolint:gosec // G115: 描述符由内核分配，始终在 int32 范围内
		fds = append(fds, unix.PollFd{Fd: int32(c.FD()), Events: unix.POLLIN})
		return true
	})
	return fds
}

// idle 在没有任何登记连接时等待投递或取消。
func (d *Dispatcher) idle(ctx context.Context) error {
	timer := time.NewTimer(d.opts.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case fn := <-d.posted:
		fn()
	case <-timer.C:
	}
	return nil
}

func (d *Dispatcher) drainPosted() {
	for {
		select {
		case fn := <-d.posted:
			fn()
		default:
			return
		}
	}
}

// dispatch 按连接类型分发一个就绪事件。
func (d *Dispatcher) dispatch(ctx context.Context, fd int, revents int16) error {
	// 同一轮中前面的回调可能已移除该描述符
	conn, ok := d.reg.Get(fd)
	if !ok {
		return nil
	}
	switch c := conn.(type) {
	case *Listener:
		// POLLERR/POLLNVAL 也交给回调，由 accept 失败计数决定是否放弃
		return c.Ready(ctx)
	case *Client:
		d.serviceClient(ctx, c, revents)
	default:
		d.opts.logger.Warn(ctx, "unknown connection type", xlog.FD(fd), xlog.Peer(conn.Label()))
	}
	return nil
}

// serviceClient 排空客户端可读数据，对端关闭或出错时移除连接。
// 数据内容被丢弃，协议解析不在本包范围内。
func (d *Dispatcher) serviceClient(ctx context.Context, c *Client, revents int16) {
	if revents&unix.POLLNVAL != 0 {
		d.drop(ctx, c, "invalid descriptor")
		return
	}
	if revents&unix.POLLIN != 0 {
		for range maxReadsPerEvent {
			n, err := unix.Read(c.FD(), d.buf)
			switch {
			case err == nil && n > 0:
				continue
			case err == nil && n == 0:
				d.drop(ctx, c, "client closed")
				return
			case errors.Is(err, unix.EINTR):
				continue
			case errors.Is(err, unix.EAGAIN):
				return
			default:
				d.opts.logger.Warn(ctx, "read client", xlog.Peer(c.Label()), xlog.Err(err))
				d.drop(ctx, c, "read error")
				return
			}
		}
		return
	}
	if revents&(unix.POLLHUP|unix.POLLERR) != 0 {
		d.drop(ctx, c, "client hung up")
	}
}

func (d *Dispatcher) drop(ctx context.Context, c *Client, reason string) {
	d.opts.logger.Debug(ctx, reason, xlog.Peer(c.Label()), xlog.FD(c.FD()))
	if err := d.reg.Remove(c.FD()); err != nil {
		d.opts.logger.Warn(ctx, "remove client", xlog.Peer(c.Label()), xlog.Err(err))
	}
}
