//go:build !windows

package xsock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/omeyang/xacpid/pkg/ipc/xconn"
	"github.com/omeyang/xacpid/pkg/observability/xlog"
)

// fakeFD 测试用描述符起点，远大于进程可能打开的描述符，
// 连接 Close 时对它调用 close(2) 只会得到 EBADF。
const fakeFD = 1 << 20

const listenFD = 3

var (
	rootPeer  = PeerCredential{PID: 1, UID: 0, GID: 0}
	userPeer  = PeerCredential{PID: 4242, UID: 1000, GID: 1000}
	otherPeer = PeerCredential{PID: 4343, UID: 1001, GID: 100}
)

// fakeRegistry 记录登记的连接，可注入 Add 错误。
type fakeRegistry struct {
	conns  map[int]xconn.Conn
	addErr error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{conns: make(map[int]xconn.Conn)}
}

func (r *fakeRegistry) Add(c xconn.Conn) error {
	if r.addErr != nil {
		return r.addErr
	}
	r.conns[c.FD()] = c
	return nil
}

// remove 模拟注册表移除连接：删除并调用 Close（执行释放钩子）。
func (r *fakeRegistry) remove(t *testing.T, fd int) {
	t.Helper()
	c, ok := r.conns[fd]
	require.True(t, ok, "fd %d not registered", fd)
	delete(r.conns, fd)
	_ = c.Close() //nolint:errcheck // 测试描述符不存在，close 返回 EBADF
}

func (r *fakeRegistry) client(t *testing.T, fd int) *xconn.Client {
	t.Helper()
	c, ok := r.conns[fd].(*xconn.Client)
	require.True(t, ok, "fd %d is not a registered client", fd)
	return c
}

func (r *fakeRegistry) listener(t *testing.T, fd int) *xconn.Listener {
	t.Helper()
	l, ok := r.conns[fd].(*xconn.Listener)
	require.True(t, ok, "fd %d is not a registered listener", fd)
	return l
}

func testOptions(sys Sys, reader sdkmetric.Reader) []Option {
	opts := []Option{WithSys(sys), WithLogger(xlog.Discard())}
	if reader != nil {
		opts = append(opts, WithMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))))
	}
	return opts
}

// collectSum 汇总某个 int64 Sum 指标的全部数据点，filter 为 nil 时不过滤。
func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string, filter func(metricdata.DataPoint[int64]) bool) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is %T", name, m.Data)
			for _, dp := range sum.DataPoints {
				if filter == nil || filter(dp) {
					total += dp.Value
				}
			}
		}
	}
	return total
}
