//go:build !windows

package xsock

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/omeyang/xacpid/pkg/ipc/xconn"
	"github.com/omeyang/xacpid/pkg/observability/xlog"
)

// stdinFD 标准输入描述符。inetd/launchd 风格的启动方式把监听套接字放在这里。
const stdinFD = 0

// Source 端点描述符的来源。
type Source string

// 端点来源。
const (
	SourceStdin   Source = "stdin"
	SourceSystemd Source = "systemd"
	SourceCreated Source = "created"
)

// Endpoint 已登记的监听端点。
//
// 描述符归注册表所有，Endpoint 只记录元数据和清理套接字文件。
type Endpoint struct {
	// FD 监听描述符。
	FD int

	// Path 套接字文件路径，接管的描述符为空。
	Path string

	// Mode 套接字文件权限，接管的描述符为 0。
	Mode os.FileMode

	// GID 设置的属组，未修改为 -1。
	GID int

	// Source 描述符来源。
	Source Source

	sys         Sys
	cleanupOnce sync.Once
}

// Inherited 描述符是否由启动方传入（而非本进程创建）。
func (e *Endpoint) Inherited() bool {
	return e.Source != SourceCreated
}

// Cleanup 删除本进程创建的套接字文件，接管的描述符不做任何事。可重复调用。
//
// 不关闭描述符：描述符由注册表关闭。
func (e *Endpoint) Cleanup() error {
	if e == nil || e.Inherited() || e.Path == "" {
		return nil
	}
	var err error
	e.cleanupOnce.Do(func() {
		err = e.sys.Unlink(e.Path)
	})
	return err
}

// Provisioner 端点创建器。
type Provisioner struct {
	cfg     Config
	reg     Registry
	onReady xconn.ReadyFunc
	sys     Sys
	logger  xlog.Logger
}

// NewProvisioner 创建端点创建器。onReady 是监听描述符可读时的回调，
// 通常为 [Admitter.OnListenerReady]。
//
// 这里只校验权限位；路径在需要新建套接字时才校验，接管 stdin 或 systemd
// 描述符时路径无效不影响启动。cfg.ClientMax 不被使用。
func NewProvisioner(cfg Config, reg Registry, onReady xconn.ReadyFunc, opts ...Option) (*Provisioner, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	if err := cfg.validateMode(); err != nil {
		return nil, err
	}
	o := applyOptions(opts)
	return &Provisioner{
		cfg:     cfg,
		reg:     reg,
		onReady: onReady,
		sys:     o.sys,
		logger:  o.logger,
	}, nil
}

// Provision 获取监听描述符，加固后登记到注册表。只应调用一次。
//
// 描述符来源依次为：stdin 上的套接字、systemd 传入的描述符、在配置路径上新建。
// 返回错误满足 errors.Is(err, ErrFatal) 或 errors.Is(err, ErrAbandoned)，
// 两种情况下描述符都已关闭。
func (p *Provisioner) Provision(ctx context.Context) (*Endpoint, error) {
	ep, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}

	if err := harden(p.sys, ep.FD); err != nil {
		p.logger.Error(ctx, "harden listener, continuing without client socket",
			xlog.FD(ep.FD), xlog.Err(err))
		p.closeFD(ctx, ep.FD)
		return nil, abandonf("harden listener", err)
	}

	if err := p.reg.Add(xconn.NewListener(ep.FD, p.onReady)); err != nil {
		p.logger.Error(ctx, "register listener, continuing without client socket",
			xlog.FD(ep.FD), xlog.Err(err))
		p.closeFD(ctx, ep.FD)
		return nil, abandonf("register listener", err)
	}

	attrs := []slog.Attr{xlog.FD(ep.FD), slog.String("source", string(ep.Source))}
	if !ep.Inherited() {
		attrs = append(attrs, xlog.Path(ep.Path), xlog.Mode(ep.Mode))
	}
	p.logger.Info(ctx, "listening for clients", attrs...)
	return ep, nil
}

// acquire 接管或新建描述符。新建时设置权限和属组。
func (p *Provisioner) acquire(ctx context.Context) (*Endpoint, error) {
	if p.sys.IsSocket(stdinFD) {
		p.logger.Debug(ctx, "using socket on stdin")
		return p.endpoint(stdinFD, SourceStdin), nil
	}

	fd, ok, err := p.sys.ActivationFD()
	if err != nil {
		p.logger.Error(ctx, "adopt activation socket", xlog.Err(err))
		return nil, fatalf("adopt activation socket", err)
	}
	if ok {
		p.logger.Debug(ctx, "using socket from service manager", xlog.FD(fd))
		return p.endpoint(fd, SourceSystemd), nil
	}

	return p.create(ctx)
}

func (p *Provisioner) create(ctx context.Context) (*Endpoint, error) {
	path := p.cfg.Path
	if err := p.cfg.validatePath(); err != nil {
		p.logger.Error(ctx, "create socket", xlog.Path(path), xlog.Err(err))
		return nil, fatalf("create socket "+path, err)
	}
	fd, err := p.sys.CreateSocket(path)
	if err != nil {
		p.logger.Error(ctx, "create socket", xlog.Path(path), xlog.Err(err))
		return nil, fatalf("create socket "+path, err)
	}

	// 设计决策: chmod 失败只放弃端点而不退出，保持守护进程一贯的行为。
	if err := p.sys.Chmod(path, p.cfg.Mode); err != nil {
		p.logger.Error(ctx, "chmod socket, continuing without client socket",
			xlog.Path(path), xlog.Mode(p.cfg.Mode), xlog.Err(err))
		p.closeFD(ctx, fd)
		return nil, abandonf("chmod "+path, err)
	}

	ep := p.endpoint(fd, SourceCreated)
	ep.Path = path
	ep.Mode = p.cfg.Mode

	if p.cfg.Group == "" {
		return ep, nil
	}
	gid, err := p.chgrp(ctx, path)
	if err != nil {
		p.closeFD(ctx, fd)
		return nil, err
	}
	ep.GID = gid
	return ep, nil
}

// chgrp 把套接字文件属组改为配置的组，属主保持不变。
func (p *Provisioner) chgrp(ctx context.Context, path string) (int, error) {
	group := p.cfg.Group
	gid, err := p.sys.LookupGroup(group)
	if err != nil {
		p.logger.Error(ctx, "lookup socket group", slog.String("group", group), xlog.Err(err))
		return -1, fatalf(fmt.Sprintf("lookup group %q", group), err)
	}
	uid, err := p.sys.OwnerUID(path)
	if err != nil {
		p.logger.Error(ctx, "stat socket", xlog.Path(path), xlog.Err(err))
		return -1, fatalf("stat "+path, err)
	}
	if err := p.sys.Chown(path, uid, gid); err != nil {
		p.logger.Error(ctx, "chown socket", xlog.Path(path), slog.String("group", group), xlog.Err(err))
		return -1, fatalf("chown "+path, err)
	}
	return gid, nil
}

func (p *Provisioner) endpoint(fd int, src Source) *Endpoint {
	return &Endpoint{FD: fd, GID: -1, Source: src, sys: p.sys}
}

func (p *Provisioner) closeFD(ctx context.Context, fd int) {
	if err := p.sys.Close(fd); err != nil {
		p.logger.Warn(ctx, "close listener", xlog.FD(fd), xlog.Err(err))
	}
}
