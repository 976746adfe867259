//go:build unix

package xsys

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// 系统调用函数变量，测试中替换以覆盖错误路径。
// 注意：替换包级变量的测试不可使用 t.Parallel()。
var (
	getrlimit = unix.Getrlimit
	setrlimit = unix.Setrlimit
)

// fileLimitMu 保护 getrlimit→setrlimit 读改写序列。
var fileLimitMu sync.Mutex

// EnsureFileLimit 把 soft limit 提升到至少 want，返回调整后的 soft limit。
//
// 当前值已足够时不做系统调用之外的任何修改；want 超过 hard limit 时
// 提升到 hard limit，返回值小于 want，由调用方决定是否告警。
func EnsureFileLimit(want uint64) (uint64, error) {
	if want == 0 {
		return 0, ErrInvalidFileLimit
	}

	fileLimitMu.Lock()
	defer fileLimitMu.Unlock()

	var rlimit unix.Rlimit
	if err := getrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		return 0, fmt.Errorf("xsys: getrlimit RLIMIT_NOFILE: %w", err)
	}

	next := target(want, rlimit.Cur, rlimit.Max)
	if next == rlimit.Cur {
		return next, nil
	}
	rlimit.Cur = next
	if err := setrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		return 0, fmt.Errorf("xsys: setrlimit RLIMIT_NOFILE: %w", err)
	}
	return next, nil
}
