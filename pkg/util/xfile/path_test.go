package xfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbsFilePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{"clean", "/var/run/xacpid.socket", "/var/run/xacpid.socket", nil},
		{"normalized", "/var/run/../run//xacpid.socket", "/var/run/xacpid.socket", nil},
		{"dotdot_in_name", "/var/log/app..1.log", "/var/log/app..1.log", nil},
		{"empty", "", "", ErrEmptyPath},
		{"null_byte", "/var/run/x\x00.sock", "", ErrNullByte},
		{"directory", "/var/run/", "", ErrInvalidPath},
		{"relative", "run/xacpid.socket", "", ErrInvalidPath},
		{"relative_traversal", "../etc/passwd", "", ErrInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AbsFilePath(tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnsureDir(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "a", "b", "xacpid.log")

	require.NoError(t, EnsureDir(file))
	fi, err := os.Stat(filepath.Dir(file))
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	// 已存在时不报错
	require.NoError(t, EnsureDir(file))

	// 当前目录下的文件无需创建目录
	require.NoError(t, EnsureDir("xacpid.log"))
}

func TestEnsureDirWithPerm_Invalid(t *testing.T) {
	assert.ErrorIs(t, EnsureDirWithPerm("", DefaultDirPerm), ErrEmptyPath)
	assert.ErrorIs(t, EnsureDirWithPerm("/tmp/x\x00/y", DefaultDirPerm), ErrNullByte)
	assert.ErrorIs(t, EnsureDirWithPerm(filepath.Join(t.TempDir(), "d", "f"), 0o600), ErrInvalidPerm)
}
