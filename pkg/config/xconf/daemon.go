package xconf

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/omeyang/xacpid/pkg/ipc/xsock"
	"github.com/omeyang/xacpid/pkg/observability/xlog"
	"github.com/omeyang/xacpid/pkg/util/xfile"
)

// DefaultMetricsInterval 指标汇总写日志的默认间隔。
const DefaultMetricsInterval = time.Minute

// Mode 八进制权限位，配置中写作字符串（如 "0660"）。
type Mode os.FileMode

// UnmarshalText 解析八进制字符串，接受 "0660"、"660" 和 "0o660"。
func (m *Mode) UnmarshalText(text []byte) error {
	s := strings.TrimPrefix(strings.TrimSpace(string(text)), "0o")
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return fmt.Errorf("%w: socket mode %q is not octal", ErrInvalid, text)
	}
	*m = Mode(v)
	return nil
}

// MarshalText 输出四位八进制。
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m Mode) String() string {
	return fmt.Sprintf("%04o", uint32(m))
}

// SocketConfig 客户端端点配置。
type SocketConfig struct {
	Path     string `koanf:"path"`
	Mode     Mode   `koanf:"mode"`
	Group    string `koanf:"group"`
	Disabled bool   `koanf:"disabled"`
}

// ClientsConfig 客户端准入配置。
type ClientsConfig struct {
	Max int `koanf:"max"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level  xlog.Level `koanf:"level"`
	Format string     `koanf:"format"`
	File   string     `koanf:"file"`
	Syslog bool       `koanf:"syslog"`
	Source bool       `koanf:"source"`

	// 以下只对 File 生效
	MaxSize    int  `koanf:"max_size"`
	MaxBackups int  `koanf:"max_backups"`
	MaxAge     int  `koanf:"max_age"`
	Compress   bool `koanf:"compress"`
}

// WatchConfig 配置文件监视配置。
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// MetricsConfig 指标配置。
type MetricsConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
}

// Daemon xacpid 的完整配置。
type Daemon struct {
	Socket  SocketConfig  `koanf:"socket"`
	Clients ClientsConfig `koanf:"clients"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Watch   WatchConfig   `koanf:"watch"`
}

// DefaultDaemon 返回默认配置。
func DefaultDaemon() Daemon {
	return Daemon{
		Socket: SocketConfig{
			Path: xsock.DefaultPath,
			Mode: Mode(xsock.DefaultMode),
		},
		Clients: ClientsConfig{Max: xsock.DefaultClientMax},
		Log: LogConfig{
			Level:      xlog.LevelInfo,
			Format:     "text",
			MaxSize:    xlog.DefaultMaxSizeMB,
			MaxBackups: xlog.DefaultMaxBackups,
			MaxAge:     xlog.DefaultMaxAgeDays,
			Compress:   true,
		},
		Metrics: MetricsConfig{Interval: DefaultMetricsInterval},
		Watch:   WatchConfig{Debounce: DefaultDebounce},
	}
}

// DecodeDaemon 在默认值之上反序列化 cfg，不做取值校验。
// 调用方在叠加其他来源（如命令行参数）后自行调用 [Daemon.Validate]。
func DecodeDaemon(cfg Config) (Daemon, error) {
	d := DefaultDaemon()
	if cfg == nil {
		return d, nil
	}
	if err := cfg.Unmarshal("", &d); err != nil {
		return Daemon{}, err
	}
	return d, nil
}

// LoadDaemon 在默认值之上反序列化 cfg 并校验。
func LoadDaemon(cfg Config) (Daemon, error) {
	d, err := DecodeDaemon(cfg)
	if err != nil {
		return Daemon{}, err
	}
	if err := d.Validate(); err != nil {
		return Daemon{}, err
	}
	return d, nil
}

// Endpoint 转换为端点配置。
func (d Daemon) Endpoint() xsock.Config {
	return xsock.Config{
		Path:      d.Socket.Path,
		Mode:      os.FileMode(d.Socket.Mode),
		Group:     d.Socket.Group,
		ClientMax: d.Clients.Max,
	}
}

// Validate 校验配置。端点被禁用时仍校验客户端上限，以便重载时使用。
func (d Daemon) Validate() error {
	ep := d.Endpoint()
	if d.Socket.Disabled {
		// 路径不使用，只校验其余字段
		ep.Path = xsock.DefaultPath
	}
	if err := ep.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	switch d.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, d.Log.Format)
	}
	if d.Log.File != "" {
		if _, err := xfile.AbsFilePath(d.Log.File); err != nil {
			return fmt.Errorf("%w: log file: %w", ErrInvalid, err)
		}
	}
	if d.Log.File != "" && d.Log.Syslog {
		return fmt.Errorf("%w: log.file and log.syslog are mutually exclusive", ErrInvalid)
	}
	if d.Log.MaxSize <= 0 || d.Log.MaxBackups < 0 || d.Log.MaxAge < 0 {
		return fmt.Errorf("%w: log rotation: max_size must be positive, max_backups and max_age non-negative", ErrInvalid)
	}
	if d.Watch.Debounce <= 0 {
		return fmt.Errorf("%w: watch debounce must be positive", ErrInvalid)
	}
	if d.Metrics.Enabled && d.Metrics.Interval <= 0 {
		return fmt.Errorf("%w: metrics interval must be positive", ErrInvalid)
	}
	return nil
}
