//go:build !windows

package xsock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"strconv"

	"github.com/coreos/go-systemd/v22/activation"
	"golang.org/x/sys/unix"
)

// 编译时接口检查
var _ Sys = unixSys{}

// unixSys 基于 golang.org/x/sys/unix 的 Sys 实现。
type unixSys struct{}

// NewSys 返回生产环境使用的 Sys 实现。
func NewSys() Sys {
	return unixSys{}
}

func (unixSys) IsSocket(fd int) bool {
	_, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_TYPE)
	return err == nil
}

// ActivationFD 接管 LISTEN_FDS 中的第一个描述符并清理环境变量。
//
// activation.Files 返回的 *os.File 被回收时会关闭描述符，
// 因此先 dup 一份再关闭全部原始文件。多余的描述符直接关闭。
func (unixSys) ActivationFD() (int, bool, error) {
	files := activation.Files(true)
	if len(files) == 0 {
		return -1, false, nil
	}
	defer func() {
		for _, f := range files {
			_ = f.Close() //nolint:errcheck // 已 dup，原始描述符不再使用
		}
	}()

	fd, err := unix.Dup(int(files[0].Fd()))
	if err != nil {
		return -1, false, fmt.Errorf("%w: dup %s: %w", ErrActivation, files[0].Name(), err)
	}
	return fd, true, nil
}

func (unixSys) CreateSocket(path string) (int, error) {
	if err := removeStale(path); err != nil {
		return -1, err
	}

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("socket: %w", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		_ = unix.Close(fd) //nolint:errcheck // 失败路径清理
		return -1, fmt.Errorf("bind %s: %w", path, err)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		_ = unix.Close(fd) //nolint:errcheck // 失败路径清理
		return -1, fmt.Errorf("listen %s: %w", path, err)
	}
	return fd, nil
}

// removeStale 删除上次运行残留的套接字文件。
func removeStale(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check existing socket: %w", err)
	}
	if info.Mode()&fs.ModeSocket == 0 {
		return fmt.Errorf("%w: %s", ErrNotSocket, path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	return nil
}

func (unixSys) Chmod(path string, mode os.FileMode) error {
	return os.Chmod(path, mode)
}

func (unixSys) LookupGroup(name string) (int, error) {
	g, err := user.LookupGroup(name)
	if err != nil {
		return -1, err
	}
	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		return -1, fmt.Errorf("group %s has non-numeric gid %q: %w", name, g.Gid, err)
	}
	return gid, nil
}

func (unixSys) OwnerUID(path string) (int, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return -1, &fs.PathError{Op: "stat", Path: path, Err: err}
	}
	return int(st.Uid), nil
}

func (unixSys) Chown(path string, uid, gid int) error {
	return os.Chown(path, uid, gid)
}

func (unixSys) Unlink(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (unixSys) SetCloexec(fd int) error {
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFD, unix.FD_CLOEXEC); err != nil {
		return fmt.Errorf("fcntl F_SETFD FD_CLOEXEC: %w", err)
	}
	return nil
}

func (unixSys) SetNonblock(fd int) error {
	if err := unix.SetNonblock(fd, true); err != nil {
		return fmt.Errorf("set O_NONBLOCK: %w", err)
	}
	return nil
}

func (unixSys) Accept(fd int) (int, PeerCredential, error) {
	nfd, _, err := unix.Accept(fd)
	if err != nil {
		return -1, PeerCredential{}, fmt.Errorf("accept: %w", err)
	}
	cred, err := peerCredential(nfd)
	if err != nil {
		_ = unix.Close(nfd) //nolint:errcheck // 失败路径清理
		return -1, PeerCredential{}, fmt.Errorf("%w: %w", ErrPeerCred, err)
	}
	return nfd, cred, nil
}

func (unixSys) Close(fd int) error {
	return unix.Close(fd)
}
