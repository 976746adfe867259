// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xfile: 文件路径校验和父目录创建
//   - xproc: 进程名称查询，本进程和对端进程
//   - xsys: 系统资源限制管理，文件描述符上限
package util
