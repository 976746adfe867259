package xrun

import (
	"context"
	"time"
)

// Ticker 返回周期性执行任务的服务函数。
//
// interval 必须为正数，否则服务函数返回 ErrInvalidInterval。
// immediate 为 true 时启动时先执行一次。fn 返回错误时服务退出。
func Ticker(interval time.Duration, immediate bool, fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}
		if fn == nil {
			return ErrNilFunc
		}
		// 设计决策: 立即执行前先检查 ctx.Err()，已取消的 context 不触发副作用。
		if immediate {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx); err != nil {
				return err
			}
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := fn(ctx); err != nil {
					return err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
