//go:build !windows && !linux && !darwin && !freebsd

package xsock

// peerCredential 在无法获取对端凭据的平台上总是失败。
//
// 设计决策: 不回退为当前进程身份。准入依赖 uid 判断是否计入配额，
// 伪造身份会让任何对端都被当作守护进程自身（通常是 root）而绕过配额。
func peerCredential(int) (PeerCredential, error) {
	return PeerCredential{}, ErrPeerCredUnsupported
}
