package xlog

import (
	"fmt"
	"log/slog"
	"os"
)

// 常用属性 Key
const (
	// KeyError 错误字段
	KeyError = "error"

	// KeyFD 描述符字段
	KeyFD = "fd"

	// KeyPath 套接字或文件路径字段
	KeyPath = "path"

	// KeyPeer 对端标签字段，格式 "pid[uid:gid]"
	KeyPeer = "peer"

	// KeyCount 计数字段
	KeyCount = "count"

	// KeyMode 文件权限字段
	KeyMode = "mode"

	// KeyComponent 组件名称字段
	KeyComponent = "component"
)

// Err 创建错误属性。err 为 nil 时返回空属性（会被 slog 忽略）。
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// FD 创建描述符属性
func FD(fd int) slog.Attr {
	return slog.Int(KeyFD, fd)
}

// Path 创建路径属性
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Peer 创建对端标签属性
func Peer(label string) slog.Attr {
	return slog.String(KeyPeer, label)
}

// Count 创建计数属性
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}

// Mode 创建权限属性，以八进制输出（如 "0660"）
func Mode(m os.FileMode) slog.Attr {
	return slog.String(KeyMode, fmt.Sprintf("%04o", m.Perm()))
}

// Component 创建组件名属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}
