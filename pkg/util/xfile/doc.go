// Package xfile 提供守护进程文件路径的校验和父目录创建。
//
// 套接字路径和日志文件路径来自配置文件或命令行，使用前经 [AbsFilePath] 校验：
// 必须是绝对路径、不含空字节、不以分隔符结尾。
// 日志文件的父目录由 [EnsureDir] 以 [DefaultDirPerm] 创建。
package xfile
