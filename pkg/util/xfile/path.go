package xfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDirPerm 默认目录权限（gosec G301）。
const DefaultDirPerm = 0o750

// AbsFilePath 校验文件路径并返回规范化结果。
//
// "/var/run/../run/x.sock" 规范化为 "/var/run/x.sock"；绝对路径中的 ".."
// 不视为穿越。
func AbsFilePath(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if strings.ContainsRune(path, 0) {
		return "", ErrNullByte
	}
	// Clean 会去掉尾部斜杠，必须先检查
	if strings.HasSuffix(path, "/") {
		return "", fmt.Errorf("%w: %s is a directory", ErrInvalidPath, path)
	}
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("%w: %s is not absolute", ErrInvalidPath, path)
	}
	return filepath.Clean(path), nil
}

// EnsureDir 以 [DefaultDirPerm] 创建文件的父目录，已存在时不修改权限。
func EnsureDir(filename string) error {
	return EnsureDirWithPerm(filename, DefaultDirPerm)
}

// EnsureDirWithPerm 以 perm 创建文件的父目录。perm 必须包含所有者执行位。
//
// 底层使用 os.MkdirAll，会跟随符号链接。
func EnsureDirWithPerm(filename string, perm os.FileMode) error {
	if filename == "" {
		return ErrEmptyPath
	}
	if strings.ContainsRune(filename, 0) {
		return ErrNullByte
	}
	if perm&0o100 == 0 {
		return fmt.Errorf("%w: %04o missing owner execute bit", ErrInvalidPerm, perm)
	}
	dir := filepath.Dir(filename)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, perm); err != nil {
		return fmt.Errorf("xfile: create %s: %w", dir, err)
	}
	return nil
}
