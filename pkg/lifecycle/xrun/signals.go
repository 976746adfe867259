package xrun

import (
	"context"
	"os"
	"slices"
	"syscall"
)

// DefaultSignals 返回默认的终止信号列表：SIGHUP、SIGINT、SIGTERM、SIGQUIT。
//
// 设置 [WithReload] 后 SIGHUP 从终止信号中移除，改为触发重载。
// 每次调用返回新的切片，调用者可安全修改。
func DefaultSignals() []os.Signal {
	return []os.Signal{
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	}
}

// ReloadSignals 返回默认的重载信号列表：SIGHUP。
func ReloadSignals() []os.Signal {
	return []os.Signal{syscall.SIGHUP}
}

// signalSets 计算终止信号和重载信号，两者不重叠。
func (o *groupOptions) signalSets() (stop, reload []os.Signal) {
	stop = o.signals
	// 设计决策: 空切片与 nil 等价，均使用默认信号列表。
	// signal.Notify(ch) 无参调用会订阅所有信号，这不是用户预期行为。
	if len(stop) == 0 {
		stop = DefaultSignals()
	}
	if o.reload == nil {
		return stop, nil
	}
	reload = o.reloadSignals
	if len(reload) == 0 {
		reload = ReloadSignals()
	}
	stop = slices.DeleteFunc(slices.Clone(stop), func(s os.Signal) bool {
		return slices.Contains(reload, s)
	})
	return stop, reload
}

// 设计决策: testSigChanKey/testSigChan/withTestSigChan 定义在非测试文件中，
// 因为 runGroup（生产代码）调用 testSigChan 从 context 获取测试通道。
// 这避免了测试中发送真实系统信号（可能影响进程或被 CI 拦截）。

// testSigChanKey 用于在测试中通过 context 注入信号通道。
type testSigChanKey struct{}

// testSigChan 从 context 中获取测试信号通道（生产环境返回 nil）。
func testSigChan(ctx context.Context) <-chan os.Signal {
	c, ok := ctx.Value(testSigChanKey{}).(<-chan os.Signal)
	if !ok {
		return nil
	}
	return c
}

// withTestSigChan 在 context 中注入测试信号通道。
func withTestSigChan(ctx context.Context, c <-chan os.Signal) context.Context {
	return context.WithValue(ctx, testSigChanKey{}, c)
}
