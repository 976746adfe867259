package xconf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce 默认防抖时间。
const DefaultDebounce = 100 * time.Millisecond

// WatchCallback 配置文件变更回调，err 表示重载是否成功。
// 重载失败时 cfg 仍持有旧配置。
type WatchCallback func(cfg Config, err error)

// WatchOption 监视器配置选项。
type WatchOption func(*Watcher)

// WithDebounce 设置防抖时间，非正值被忽略。
// 在指定时间内的多次变更只触发一次重载。
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher 配置文件监视器。
type Watcher struct {
	cfg      Config
	watcher  *fsnotify.Watcher
	callback WatchCallback
	debounce time.Duration
	filename string

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	wg      sync.WaitGroup // 在途回调
}

// Watch 创建配置文件监视器，调用 Run 开始监视。
//
// 监视配置文件所在目录而非文件本身：编辑器保存时可能先删除再创建，
// 直接监视文件会丢失后续事件。
func Watch(cfg Config, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	if cfg == nil || cfg.Path() == "" {
		return nil, ErrNotWatchable
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xconf: create watcher: %w", err)
	}
	dir := filepath.Dir(cfg.Path())
	if err := fsWatcher.Add(dir); err != nil {
		return nil, errors.Join(fmt.Errorf("xconf: watch directory %s: %w", dir, err), fsWatcher.Close())
	}

	w := &Watcher{
		cfg:      cfg,
		watcher:  fsWatcher,
		callback: callback,
		debounce: DefaultDebounce,
		filename: filepath.Base(cfg.Path()),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Run 监视直到 ctx 取消，返回时关闭底层 watcher 并等待在途回调结束。
// 正常取消返回 nil。
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if w.callback != nil {
				w.callback(w.cfg, fmt.Errorf("xconf: watch: %w", err))
			}
		}
	}
}

// handleEvent 只处理目标文件的写入、创建和重命名（原子写入）事件。
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != w.filename {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil && w.timer.Stop() {
		// 被取消的定时器不会执行，归还计数
		w.wg.Done()
	}
	w.wg.Add(1)
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	defer w.wg.Done()
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return
	}
	err := w.cfg.Reload()
	if w.callback != nil {
		w.callback(w.cfg, err)
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	w.stopped = true
	if w.timer != nil && w.timer.Stop() {
		w.wg.Done()
	}
	w.timer = nil
	w.mu.Unlock()

	_ = w.watcher.Close() //nolint:errcheck // 关闭失败不影响退出
	w.wg.Wait()
}
