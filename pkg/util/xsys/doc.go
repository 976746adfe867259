// Package xsys 管理进程的描述符上限（RLIMIT_NOFILE）。
//
// 守护进程每个客户端连接占用一个描述符。启动或调高客户端上限时调用
// [EnsureFileLimit]，把 soft limit 提升到足以容纳全部连接的值：
//
//	want := uint64(clientMax) + xsys.Reserve
//	soft, err := xsys.EnsureFileLimit(want)
//	if err != nil || soft < want {
//	    // 记录告警，继续运行
//	}
//
// 只提升不降低；hard limit 不足时截断到 hard limit，不尝试提升 hard limit。
// 非 Unix 平台返回 [ErrUnsupportedPlatform]。
package xsys
