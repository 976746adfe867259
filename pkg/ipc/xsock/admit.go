//go:build !windows

package xsock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/omeyang/xacpid/pkg/ipc/xconn"
	"github.com/omeyang/xacpid/pkg/observability/xlog"
	"github.com/omeyang/xacpid/pkg/util/xproc"
)

// Registry 接收已加固的连接。Add 成功后描述符归注册表所有，
// 注册表移除连接时调用其 Close（执行配额释放钩子）。
type Registry interface {
	Add(c xconn.Conn) error
}

// Admitter 连接准入器。
//
// 持有非 root 配额计数器和连续 accept 失败计数，只在事件循环 goroutine 上使用。
type Admitter struct {
	reg     Registry
	sys     Sys
	logger  xlog.Logger
	metrics *admitMetrics
	quota   *Quota
	streak  int
}

// NewAdmitter 创建准入器，clientMax 为非 root 客户端上限。
func NewAdmitter(reg Registry, clientMax int, opts ...Option) (*Admitter, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	if clientMax < 1 || clientMax > MaxClientMax {
		return nil, fmt.Errorf("%w: client max %d out of range [1, %d]", ErrInvalidConfig, clientMax, MaxClientMax)
	}
	o := applyOptions(opts)
	m, err := newAdmitMetrics(o.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("xsock: create metrics: %w", err)
	}
	return &Admitter{
		reg:     reg,
		sys:     o.sys,
		logger:  o.logger,
		metrics: m,
		quota:   NewQuota(clientMax),
	}, nil
}

// OnListenerReady 处理监听描述符的一次可读通知，只接受一个连接。
//
// 返回非 nil 错误仅当连续 accept 失败达到 [MaxAcceptErrors]，
// 此时错误满足 errors.Is(err, ErrAcceptStreak) 和 errors.Is(err, ErrFatal)。
// 其余失败（凭据获取失败、配额拒绝、加固失败、登记失败）记录日志、关闭新描述符后返回 nil。
func (a *Admitter) OnListenerReady(ctx context.Context, listenerFD int) error {
	fd, cred, err := a.sys.Accept(listenerFD)
	if errors.Is(err, ErrPeerCred) {
		// accept 本身成功，只丢弃这一个连接
		a.streak = 0
		a.logger.Error(ctx, "peer credentials", xlog.FD(listenerFD), xlog.Err(err))
		a.metrics.recordRejected(ctx, reasonCred)
		return nil
	}
	if err != nil {
		return a.acceptFailed(ctx, listenerFD, err)
	}
	a.streak = 0

	label := cred.Label()
	counted, ok := a.quota.Admit(cred)
	if !ok {
		a.logger.Warn(ctx, "too many non-root clients, rejecting",
			xlog.Peer(label), xlog.Count(a.quota.Count()))
		a.closeFD(ctx, fd, label)
		a.metrics.recordRejected(ctx, reasonQuota)
		return nil
	}
	if counted {
		a.metrics.recordNonRoot(ctx, 1)
	}

	// 设计决策: 加固失败不回退计数。计数会比在线非 root 连接多一，
	// 与守护进程一贯的行为一致。
	if err := harden(a.sys, fd); err != nil {
		a.logger.Error(ctx, "harden client", xlog.Peer(label), xlog.Err(err))
		a.closeFD(ctx, fd, label)
		a.metrics.recordRejected(ctx, reasonHarden)
		return nil
	}

	release := a.releaser(counted)
	if err := a.reg.Add(xconn.NewClient(fd, label, release)); err != nil {
		a.logger.Error(ctx, "register client", xlog.Peer(label), xlog.Err(err))
		a.closeFD(ctx, fd, label)
		if release != nil {
			release()
		}
		a.metrics.recordRejected(ctx, reasonRegister)
		return nil
	}

	a.metrics.recordAccepted(ctx, cred)
	attrs := []slog.Attr{xlog.Peer(label), xlog.FD(fd)}
	if comm := xproc.Comm(cred.PID); comm != "" {
		attrs = append(attrs, slog.String("comm", comm))
	}
	a.logger.Info(ctx, "client connected", attrs...)
	return nil
}

func (a *Admitter) acceptFailed(ctx context.Context, listenerFD int, err error) error {
	a.streak++
	a.metrics.recordAcceptError(ctx)
	a.logger.Error(ctx, "accept client", xlog.FD(listenerFD), xlog.Count(a.streak), xlog.Err(err))
	if a.streak < MaxAcceptErrors {
		return nil
	}
	a.logger.Error(ctx, "too many accept errors, giving up", xlog.Count(a.streak))
	return fmt.Errorf("%w: %d consecutive failures: %w", ErrAcceptStreak, a.streak, err)
}

// releaser 返回连接关闭时归还名额的钩子，未计数的连接返回 nil。
func (a *Admitter) releaser(counted bool) func() {
	if !counted {
		return nil
	}
	return func() {
		a.quota.Release()
		a.metrics.recordNonRoot(context.Background(), -1)
	}
}

func (a *Admitter) closeFD(ctx context.Context, fd int, label string) {
	if err := a.sys.Close(fd); err != nil {
		a.logger.Warn(ctx, "close client", xlog.Peer(label), xlog.FD(fd), xlog.Err(err))
	}
}

// SetClientMax 修改非 root 客户端上限，已准入的连接不受影响。
// 必须在事件循环 goroutine 上调用。
func (a *Admitter) SetClientMax(n int) error {
	if n < 1 || n > MaxClientMax {
		return fmt.Errorf("%w: client max %d out of range [1, %d]", ErrInvalidConfig, n, MaxClientMax)
	}
	a.quota.SetMax(n)
	return nil
}

// Quota 返回非 root 配额计数器。
func (a *Admitter) Quota() *Quota {
	return a.quota
}

// Streak 返回当前连续 accept 失败次数。
func (a *Admitter) Streak() int {
	return a.streak
}

// harden 依次设置 FD_CLOEXEC 和 O_NONBLOCK，第一个失败即返回。
func harden(sys Sys, fd int) error {
	if err := sys.SetCloexec(fd); err != nil {
		return err
	}
	if err := sys.SetNonblock(fd); err != nil {
		return err
	}
	return nil
}
