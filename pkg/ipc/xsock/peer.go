package xsock

import (
	"log/slog"
	"strconv"
)

// PeerCredential 内核报告的对端凭据，与连接一同原子获取。
//
// macOS/FreeBSD 的 LOCAL_PEERCRED 不返回 pid，此时 PID 为 0。
type PeerCredential struct {
	PID int32
	UID uint32
	GID uint32
}

// Label 返回 "pid[uid:gid]" 形式的连接标签。
func (c PeerCredential) Label() string {
	b := make([]byte, 0, 32)
	b = strconv.AppendInt(b, int64(c.PID), 10)
	b = append(b, '[')
	b = strconv.AppendUint(b, uint64(c.UID), 10)
	b = append(b, ':')
	b = strconv.AppendUint(b, uint64(c.GID), 10)
	b = append(b, ']')
	return string(b)
}

// Privileged 对端是否为 root。root 不受配额限制。
func (c PeerCredential) Privileged() bool {
	return c.UID == 0
}

// LogValue 实现 slog.LogValuer。
func (c PeerCredential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("pid", int(c.PID)),
		slog.Uint64("uid", uint64(c.UID)),
		slog.Uint64("gid", uint64(c.GID)),
	)
}
