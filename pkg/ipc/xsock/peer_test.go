//go:build !windows

package xsock

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeerCredential_Label(t *testing.T) {
	tests := []struct {
		cred PeerCredential
		want string
	}{
		{PeerCredential{PID: 4242, UID: 1000, GID: 100}, "4242[1000:100]"},
		{PeerCredential{}, "0[0:0]"},
		{PeerCredential{PID: 1, UID: 4294967295, GID: 4294967294}, "1[4294967295:4294967294]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cred.Label())
	}
}

func TestPeerCredential_Privileged(t *testing.T) {
	assert.True(t, rootPeer.Privileged())
	assert.False(t, userPeer.Privileged())
	// 属组为 0 不代表特权
	assert.False(t, PeerCredential{UID: 1000, GID: 0}.Privileged())
}

func TestPeerCredential_LogValue(t *testing.T) {
	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("peer", "cred", userPeer)
	out := buf.String()
	assert.True(t, strings.Contains(out, "cred.pid=4242"), out)
	assert.True(t, strings.Contains(out, "cred.uid=1000"), out)
}
