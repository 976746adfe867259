package xsock

import (
	"fmt"
	"os"

	"github.com/omeyang/xacpid/pkg/util/xfile"
)

// 默认配置值。
const (
	// DefaultPath 默认套接字路径。
	DefaultPath = "/var/run/xacpid.socket"

	// DefaultMode 默认套接字权限，仅属主可连接。
	DefaultMode os.FileMode = 0o600

	// DefaultClientMax 默认非 root 客户端上限。
	DefaultClientMax = 256

	// MaxClientMax 非 root 客户端上限的最大值。
	MaxClientMax = 65536

	// MaxAcceptErrors 连续 accept 失败次数上限，达到后放弃并以致命错误退出。
	MaxAcceptErrors = 5

	// maxPathLen sockaddr_un.sun_path 的可移植上限（含结尾 NUL，取 BSD 的 104）。
	maxPathLen = 104
)

// Config 端点配置。
type Config struct {
	// Path 新建套接字的文件路径，接管已有描述符时不使用。
	Path string

	// Mode 新建套接字文件的权限位。
	Mode os.FileMode

	// Group 套接字文件属组名，为空时不修改属组。
	Group string

	// ClientMax 同时在线的非 root 客户端上限。
	ClientMax int
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		Path:      DefaultPath,
		Mode:      DefaultMode,
		ClientMax: DefaultClientMax,
	}
}

// Validate 校验配置。
func (c Config) Validate() error {
	if err := c.validatePath(); err != nil {
		return err
	}
	if err := c.validateMode(); err != nil {
		return err
	}
	if c.ClientMax < 1 || c.ClientMax > MaxClientMax {
		return fmt.Errorf("%w: client max %d out of range [1, %d]", ErrInvalidConfig, c.ClientMax, MaxClientMax)
	}
	return nil
}

// validatePath 校验新建套接字的路径。只有新建端点时才需要。
func (c Config) validatePath() error {
	if _, err := xfile.AbsFilePath(c.Path); err != nil {
		return fmt.Errorf("%w: socket path: %w", ErrInvalidConfig, err)
	}
	if len(c.Path) >= maxPathLen {
		return fmt.Errorf("%w: socket path too long (%d >= %d)", ErrInvalidConfig, len(c.Path), maxPathLen)
	}
	return nil
}

func (c Config) validateMode() error {
	if c.Mode&^os.ModePerm != 0 {
		return fmt.Errorf("%w: socket mode %#o exceeds 0777", ErrInvalidConfig, uint32(c.Mode))
	}
	return nil
}
