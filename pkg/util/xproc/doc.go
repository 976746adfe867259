// Package xproc 提供进程名称查询：本进程名用作 syslog 标识，
// 对端进程名（Linux 上读取 /proc/<pid>/comm）用于客户端连接日志。
package xproc
