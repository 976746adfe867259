//go:build linux

package xsock

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// peerCredential 通过 SO_PEERCRED 获取对端凭据（Linux）。
func peerCredential(fd int) (PeerCredential, error) {
	cred, err := unix.GetsockoptUcred(fd, unix.SOL_SOCKET, unix.SO_PEERCRED)
	if err != nil {
		return PeerCredential{}, fmt.Errorf("getsockopt SO_PEERCRED: %w", err)
	}
	return PeerCredential{PID: cred.Pid, UID: cred.Uid, GID: cred.Gid}, nil
}
