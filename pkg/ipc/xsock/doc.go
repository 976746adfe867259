// Package xsock 提供守护进程客户端准入子系统：本地 Unix 流套接字端点的
// 创建/接管，以及基于内核对端凭据的连接准入。
//
// # 组件
//
//   - [Provisioner]：启动时调用一次 [Provisioner.Provision]，按顺序尝试
//     接管 stdin 上的套接字、systemd 传入的监听套接字，最后在配置路径上
//     新建套接字；随后设置权限/属组，加固描述符（FD_CLOEXEC + O_NONBLOCK），
//     并以监听连接的形式登记到注册表。
//   - [Admitter]：监听描述符可读时由事件循环调用 [Admitter.OnListenerReady]，
//     每次接受一个连接，读取对端 pid/uid/gid，执行非 root 配额，
//     加固后以 "pid[uid:gid]" 标签登记为数据连接。
//
// # 错误分类
//
// 跨组件边界的错误只有两类，调用方用 errors.Is 判断：
//
//   - [ErrFatal]：启动期致命错误（创建套接字、解析属组、stat、chown），
//     以及连续 [MaxAcceptErrors] 次 accept 失败（[ErrAcceptStreak]）。进程应以状态 1 退出。
//   - [ErrAbandoned]：放弃端点（chmod 或监听描述符加固/登记失败），
//     守护进程继续运行，但没有客户端端点。
//
// 单个连接上的失败（配额拒绝、加固失败、登记失败）只记录日志并关闭描述符。
//
// # 并发
//
// Provision 在事件循环启动前调用；Admitter 的全部方法只能在事件循环
// goroutine 上调用（其他 goroutine 通过 xconn.Dispatcher.Post 投递），
// 因此计数器不加锁。
//
// # 用法
//
//	reg := xconn.NewRegistry()
//	d := xconn.NewDispatcher(reg, xconn.WithLogger(logger))
//	adm, err := xsock.NewAdmitter(reg, cfg.ClientMax, xsock.WithLogger(logger))
//	if err != nil { ... }
//	prov, err := xsock.NewProvisioner(cfg, reg, adm.OnListenerReady, xsock.WithLogger(logger))
//	if err != nil { ... }
//	ep, err := prov.Provision(ctx)
//	switch {
//	case errors.Is(err, xsock.ErrFatal):
//	    os.Exit(1)
//	case errors.Is(err, xsock.ErrAbandoned):
//	    // 无客户端端点，继续运行
//	}
//	defer ep.Cleanup()
//	err = d.Run(ctx) // 连续 accept 失败时返回 ErrAcceptStreak
package xsock
