// Package xconn 提供连接注册表和基于 poll 的单线程事件分发器。
//
// # 概述
//
// xconn 是客户端准入子系统（xsock）的宿主：xsock 把监听描述符和已准入的客户端
// 描述符登记到 [Registry]，由 [Dispatcher] 在单个 goroutine 中轮询可读事件并回调。
//
// 注册表中的连接是一个带标签的变体：
//
//   - [Listener]：监听套接字，可读时调用其就绪回调（通常是 xsock.Admitter）
//   - [Client]：数据连接，对本包不透明；可读时排空数据，EOF/挂断/出错时移除
//
// # 所有权
//
// Add 成功后描述符归注册表所有，调用方不得再关闭它。Remove/CloseAll 会调用
// 连接的 Close，Client 的 Close 会先执行登记时提供的释放钩子（用于归还配额），
// 再关闭描述符，且只执行一次。
//
// # 并发模型
//
// Registry 不是并发安全的，只能在 Dispatcher.Run 所在的 goroutine 中访问。
// 其他 goroutine 需要修改状态时（例如配置热更新），通过 [Dispatcher.Post]
// 把函数投递到事件循环中执行。
package xconn
