//go:build !windows && !plan9

package xlog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"log/syslog"
	"strings"
	"sync"
)

// SetSyslog 输出到本机 syslog（facility daemon），tag 为进程标识
//
// 设置后忽略 SetOutput/SetRotation/SetFormat，消息按 slog 级别映射到
// syslog 优先级（ERROR→err, WARN→warning, INFO→info, DEBUG→debug）。
func (b *Builder) SetSyslog(tag string) *Builder {
	if strings.TrimSpace(tag) == "" {
		b.err = fmt.Errorf("xlog: empty syslog tag")
		return b
	}
	b.syslogTag = tag
	return b
}

// syslogHandler 把 text 格式的记录按级别写入 syslog。
// 派生 handler 共享同一个缓冲区和锁。
type syslogHandler struct {
	w     *syslog.Writer
	mu    *sync.Mutex
	buf   *bytes.Buffer
	inner slog.Handler
}

func newSyslogHandler(tag string, opts *slog.HandlerOptions) (slog.Handler, io.Closer, error) {
	w, err := syslog.New(syslog.LOG_DAEMON|syslog.LOG_INFO, tag)
	if err != nil {
		return nil, nil, fmt.Errorf("xlog: connect syslog: %w", err)
	}
	buf := new(bytes.Buffer)
	inner := slog.NewTextHandler(buf, &slog.HandlerOptions{
		Level:     opts.Level,
		AddSource: opts.AddSource,
		// syslog 自带时间戳和优先级
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && (a.Key == slog.TimeKey || a.Key == slog.LevelKey) {
				return slog.Attr{}
			}
			return a
		},
	})
	return &syslogHandler{w: w, mu: new(sync.Mutex), buf: buf, inner: inner}, w, nil
}

func (h *syslogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *syslogHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf.Reset()
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	msg := strings.TrimSuffix(h.buf.String(), "\n")
	switch {
	case r.Level >= slog.LevelError:
		return h.w.Err(msg)
	case r.Level >= slog.LevelWarn:
		return h.w.Warning(msg)
	case r.Level >= slog.LevelInfo:
		return h.w.Info(msg)
	default:
		return h.w.Debug(msg)
	}
}

func (h *syslogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &syslogHandler{w: h.w, mu: h.mu, buf: h.buf, inner: h.inner.WithAttrs(attrs)}
}

func (h *syslogHandler) WithGroup(name string) slog.Handler {
	return &syslogHandler{w: h.w, mu: h.mu, buf: h.buf, inner: h.inner.WithGroup(name)}
}
