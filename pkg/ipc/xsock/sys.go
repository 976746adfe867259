package xsock

import "os"

//go:generate mockgen -destination=mock_sys_test.go -package=xsock . Sys

// Sys 端点和准入用到的操作系统原语。
//
// 生产实现见 [NewSys]；测试用 gomock 生成的 MockSys 替换。
type Sys interface {
	// IsSocket 描述符是否为套接字（通过 getsockopt(SO_TYPE) 判断）。
	IsSocket(fd int) bool

	// ActivationFD 返回 systemd 传入的第一个监听描述符。
	// ok=false 表示没有传入描述符。
	ActivationFD() (fd int, ok bool, err error)

	// CreateSocket 在 path 上创建并监听 Unix 流套接字。
	// path 上残留的套接字文件会先被删除，非套接字文件返回 ErrNotSocket。
	CreateSocket(path string) (int, error)

	// Chmod 修改套接字文件权限。
	Chmod(path string, mode os.FileMode) error

	// LookupGroup 解析组名为 gid。
	LookupGroup(name string) (int, error)

	// OwnerUID 返回文件属主 uid。
	OwnerUID(path string) (int, error)

	// Chown 修改文件属主和属组。
	Chown(path string, uid, gid int) error

	// Unlink 删除套接字文件，文件不存在不算错误。
	Unlink(path string) error

	// SetCloexec 设置 FD_CLOEXEC。
	SetCloexec(fd int) error

	// SetNonblock 设置 O_NONBLOCK。
	SetNonblock(fd int) error

	// Accept 接受一个连接，并原子地获取对端凭据。
	// 获取凭据失败时新描述符已被关闭，错误满足 errors.Is(err, ErrPeerCred)。
	Accept(fd int) (int, PeerCredential, error)

	// Close 关闭描述符。
	Close(fd int) error
}
