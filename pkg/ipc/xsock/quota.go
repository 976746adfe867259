package xsock

// Quota 非 root 客户端计数器。
//
// 不是并发安全的：只在事件循环 goroutine 上使用。
type Quota struct {
	max   int
	count int
}

// NewQuota 创建上限为 limit 的计数器。
func NewQuota(limit int) *Quota {
	return &Quota{max: limit}
}

// Admit 判断对端能否准入。
//
// root 对端总是准入且不计数（counted=false）；非 root 对端在计数未达上限时
// 准入并计数，否则拒绝（ok=false），计数不变。
func (q *Quota) Admit(cred PeerCredential) (counted, ok bool) {
	if cred.Privileged() {
		return false, true
	}
	// 上限可能在运行中被调低，已准入的连接不会被驱逐
	if q.count >= q.max {
		return false, false
	}
	q.count++
	return true, true
}

// Release 归还一个名额，计数不会低于 0。
func (q *Quota) Release() {
	if q.count > 0 {
		q.count--
	}
}

// Count 返回当前计数。
func (q *Quota) Count() int { return q.count }

// Max 返回上限。
func (q *Quota) Max() int { return q.max }

// SetMax 修改上限，只影响之后的准入判断。
func (q *Quota) SetMax(limit int) { q.max = limit }
