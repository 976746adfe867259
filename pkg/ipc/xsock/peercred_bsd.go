//go:build darwin || freebsd

package xsock

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// peerCredential 通过 LOCAL_PEERCRED 获取对端凭据（macOS/FreeBSD），PID 为 0。
func peerCredential(fd int) (PeerCredential, error) {
	cred, err := unix.GetsockoptXucred(fd, unix.SOL_LOCAL, unix.LOCAL_PEERCRED)
	if err != nil {
		return PeerCredential{}, fmt.Errorf("getsockopt LOCAL_PEERCRED: %w", err)
	}
	var gid uint32
	if cred.Ngroups > 0 {
		gid = cred.Groups[0] // 主组
	}
	return PeerCredential{UID: cred.Uid, GID: gid}, nil
}
