// Package ipc 提供本机进程间通信相关的子包。
//
// 子包列表：
//   - xconn: 连接注册表和单线程 poll 事件分发器
//   - xsock: Unix 域套接字端点的创建、接管和客户端准入
package ipc
