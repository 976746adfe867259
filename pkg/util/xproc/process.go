package xproc

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// 测试中替换的包级变量。
var (
	osExecutable = os.Executable
	procRoot     = "/proc"
)

var (
	processNameOnce  sync.Once
	processNameValue string
)

// baseName 提取路径的基础文件名，特殊值（"."、".."、路径分隔符）返回空字符串。
func baseName(path string) string {
	name := filepath.Base(path)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

func resolveProcessName() string {
	if exe, err := osExecutable(); err == nil && exe != "" {
		if name := baseName(exe); name != "" {
			return name
		}
	}
	if len(os.Args) == 0 || os.Args[0] == "" {
		return ""
	}
	return baseName(os.Args[0])
}

// ProcessName 返回当前进程名称（不含路径），首次调用后缓存。
//
// 优先使用 [os.Executable]，失败时回退到 os.Args[0]；都无效时返回空字符串。
func ProcessName() string {
	processNameOnce.Do(func() {
		processNameValue = resolveProcessName()
	})
	return processNameValue
}

// ProcessNameOr 返回当前进程名称，为空时返回 fallback。
func ProcessNameOr(fallback string) string {
	if name := ProcessName(); name != "" {
		return name
	}
	return fallback
}

// Comm 返回 pid 对应进程的命令名（/proc/<pid>/comm）。
//
// pid 非正、进程已退出或系统没有 procfs 时返回空字符串。
// 对端可能在准入后立即退出，结果只用于日志。
func Comm(pid int32) string {
	if pid <= 0 {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(procRoot, strconv.Itoa(int(pid)), "comm"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
