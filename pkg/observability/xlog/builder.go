package xlog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/omeyang/xacpid/pkg/util/xfile"
)

// 日志文件轮转默认值
const (
	// DefaultMaxSizeMB 单个日志文件最大大小（MB）
	DefaultMaxSizeMB = 100

	// DefaultMaxBackups 保留的备份文件数量
	DefaultMaxBackups = 7

	// DefaultMaxAgeDays 保留备份的天数
	DefaultMaxAgeDays = 30
)

// RotateOption 日志文件轮转选项
type RotateOption func(*lumberjack.Logger)

// WithMaxSize 设置单个日志文件最大大小（MB），非正值被忽略
func WithMaxSize(mb int) RotateOption {
	return func(l *lumberjack.Logger) {
		if mb > 0 {
			l.MaxSize = mb
		}
	}
}

// WithMaxBackups 设置保留的备份文件数量，0 表示不限制
func WithMaxBackups(n int) RotateOption {
	return func(l *lumberjack.Logger) {
		if n >= 0 {
			l.MaxBackups = n
		}
	}
}

// WithMaxAge 设置保留备份的天数，0 表示不按天数清理
func WithMaxAge(days int) RotateOption {
	return func(l *lumberjack.Logger) {
		if days >= 0 {
			l.MaxAge = days
		}
	}
}

// WithCompress 设置是否 gzip 压缩备份文件
func WithCompress(compress bool) RotateOption {
	return func(l *lumberjack.Logger) {
		l.Compress = compress
	}
}

// Builder 日志配置构建器
type Builder struct {
	output    io.Writer
	closers   []io.Closer
	levelVar  *slog.LevelVar
	format    string
	addSource bool
	syslogTag string
	err       error
}

// New 创建配置构建器，默认输出到 stderr、Info 级别、text 格式
func New() *Builder {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)

	return &Builder{
		output:   os.Stderr,
		levelVar: levelVar,
		format:   "text",
	}
}

// SetOutput 设置日志输出目标
func (b *Builder) SetOutput(w io.Writer) *Builder {
	if w == nil {
		b.err = errors.New("xlog: nil output")
		return b
	}
	b.output = w
	return b
}

// SetLevel 设置日志级别
func (b *Builder) SetLevel(level Level) *Builder {
	b.levelVar.Set(slog.Level(level))
	return b
}

// SetFormat 设置输出格式：text 或 json，空值使用 text
func (b *Builder) SetFormat(format string) *Builder {
	normalized := strings.ToLower(strings.TrimSpace(format))
	if normalized == "" {
		b.format = "text"
		return b
	}
	if normalized != "text" && normalized != "json" {
		b.err = fmt.Errorf("xlog: unknown format %q", format)
		return b
	}
	b.format = normalized
	return b
}

// SetAddSource 是否在日志中添加源码位置
func (b *Builder) SetAddSource(enable bool) *Builder {
	b.addSource = enable
	return b
}

// SetRotation 输出到按大小轮转的日志文件
//
// filename 必须是绝对路径，父目录不存在时以 0750 创建。
func (b *Builder) SetRotation(filename string, opts ...RotateOption) *Builder {
	clean, err := xfile.AbsFilePath(strings.TrimSpace(filename))
	if err != nil {
		b.err = fmt.Errorf("xlog: log filename: %w", err)
		return b
	}
	if err := xfile.EnsureDir(clean); err != nil {
		b.err = fmt.Errorf("xlog: create log dir: %w", err)
		return b
	}
	rotator := &lumberjack.Logger{
		Filename:   clean,
		MaxSize:    DefaultMaxSizeMB,
		MaxBackups: DefaultMaxBackups,
		MaxAge:     DefaultMaxAgeDays,
		Compress:   true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(rotator)
		}
	}
	b.output = rotator
	b.closers = append(b.closers, rotator)
	return b
}

// Build 构建 Logger 实例
//
// 返回值：
//   - LoggerWithLevel: 日志实例，同时支持动态级别控制
//   - func() error: 清理函数，关闭日志文件或 syslog 连接，可重复调用
//   - error: 配置错误
func (b *Builder) Build() (LoggerWithLevel, func() error, error) {
	if b.err != nil {
		b.closeAll()
		return nil, nil, b.err
	}

	opts := &slog.HandlerOptions{
		Level:     b.levelVar,
		AddSource: b.addSource,
	}

	var handler slog.Handler
	switch {
	case b.syslogTag != "":
		h, closer, err := newSyslogHandler(b.syslogTag, opts)
		if err != nil {
			b.closeAll()
			return nil, nil, err
		}
		b.closers = append(b.closers, closer)
		handler = h
	case b.format == "json":
		handler = slog.NewJSONHandler(b.output, opts)
	default:
		handler = slog.NewTextHandler(b.output, opts)
	}

	logger := &xlogger{
		handler:    handler,
		levelVar:   b.levelVar,
		addSource:  b.addSource,
		errorCount: new(atomic.Uint64),
	}
	return logger, b.cleanup(), nil
}

func (b *Builder) cleanup() func() error {
	var once sync.Once
	closers := b.closers
	return func() error {
		var errs []error
		once.Do(func() {
			for _, c := range closers {
				if err := c.Close(); err != nil {
					errs = append(errs, err)
				}
			}
		})
		return errors.Join(errs...)
	}
}

func (b *Builder) closeAll() {
	for _, c := range b.closers {
		_ = c.Close() //nolint:errcheck // 构建失败路径的尽力清理
	}
	b.closers = nil
}
