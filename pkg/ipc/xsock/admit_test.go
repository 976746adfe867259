//go:build !windows

package xsock

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/mock/gomock"

	"github.com/omeyang/xacpid/pkg/observability/xlog"
)

// expectAdmit 期望一次成功的 accept 和加固。
func expectAdmit(sys *MockSys, fd int, cred PeerCredential) {
	gomock.InOrder(
		sys.EXPECT().Accept(listenFD).Return(fd, cred, nil),
		sys.EXPECT().SetCloexec(fd).Return(nil),
		sys.EXPECT().SetNonblock(fd).Return(nil),
	)
}

// expectReject 期望 accept 成功后直接关闭。
func expectReject(sys *MockSys, fd int, cred PeerCredential) {
	gomock.InOrder(
		sys.EXPECT().Accept(listenFD).Return(fd, cred, nil),
		sys.EXPECT().Close(fd).Return(nil),
	)
}

func newTestAdmitter(t *testing.T, sys Sys, reg Registry, clientMax int) *Admitter {
	t.Helper()
	a, err := NewAdmitter(reg, clientMax, testOptions(sys, nil)...)
	require.NoError(t, err)
	return a
}

func TestNewAdmitter_Validation(t *testing.T) {
	_, err := NewAdmitter(nil, 1)
	assert.ErrorIs(t, err, ErrNilRegistry)

	for _, n := range []int{0, -1, MaxClientMax + 1} {
		_, err := NewAdmitter(newFakeRegistry(), n)
		assert.ErrorIs(t, err, ErrInvalidConfig, "clientMax=%d", n)
	}
}

func TestAdmitter_QuotaTracksOpenNonRootClients(t *testing.T) {
	ctrl := gomock.NewController(t)
	sys := NewMockSys(ctrl)
	reg := newFakeRegistry()
	a := newTestAdmitter(t, sys, reg, 3)
	ctx := context.Background()

	admit := func(fd int, cred PeerCredential) {
		t.Helper()
		expectAdmit(sys, fd, cred)
		require.NoError(t, a.OnListenerReady(ctx, listenFD))
	}

	admit(fakeFD, userPeer)
	admit(fakeFD+1, otherPeer)
	admit(fakeFD+2, userPeer)
	assert.Equal(t, 3, a.Quota().Count())

	// 已满：关闭且不登记
	expectReject(sys, fakeFD+3, otherPeer)
	require.NoError(t, a.OnListenerReady(ctx, listenFD))
	assert.Equal(t, 3, a.Quota().Count())
	assert.NotContains(t, reg.conns, fakeFD+3)

	reg.remove(t, fakeFD+1)
	assert.Equal(t, 2, a.Quota().Count())

	admit(fakeFD+4, otherPeer)
	admit(fakeFD+5, rootPeer)
	assert.Equal(t, 3, a.Quota().Count())

	reg.remove(t, fakeFD+5)
	assert.Equal(t, 3, a.Quota().Count(), "removing a root client must not release quota")

	for _, fd := range []int{fakeFD, fakeFD + 2, fakeFD + 4} {
		reg.remove(t, fd)
	}
	assert.Equal(t, 0, a.Quota().Count())
	assert.Empty(t, reg.conns)
}

func TestAdmitter_RejectAtLimitKeepsCounter(t *testing.T) {
	ctrl := gomock.NewController(t)
	sys := NewMockSys(ctrl)
	reg := newFakeRegistry()
	a := newTestAdmitter(t, sys, reg, 1)
	ctx := context.Background()

	expectAdmit(sys, fakeFD, userPeer)
	require.NoError(t, a.OnListenerReady(ctx, listenFD))

	// 拒绝路径不会调用 SetCloexec/SetNonblock，gomock 对意外调用直接失败
	expectReject(sys, fakeFD+1, userPeer)
	require.NoError(t, a.OnListenerReady(ctx, listenFD))

	assert.Equal(t, 1, a.Quota().Count())
	assert.Len(t, reg.conns, 1)
}

func TestAdmitter_QuotaRejectionLoggedAtWarn(t *testing.T) {
	ctrl := gomock.NewController(t)
	sys := NewMockSys(ctrl)
	var buf bytes.Buffer
	logger, _, err := xlog.New().SetOutput(&buf).Build()
	require.NoError(t, err)
	a, err := NewAdmitter(newFakeRegistry(), 1, WithSys(sys), WithLogger(logger))
	require.NoError(t, err)

	expectAdmit(sys, fakeFD, userPeer)
	require.NoError(t, a.OnListenerReady(context.Background(), listenFD))
	expectReject(sys, fakeFD+1, otherPeer)
	require.NoError(t, a.OnListenerReady(context.Background(), listenFD))

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "too many non-root clients")
	assert.Contains(t, out, otherPeer.Label())
}

func TestAdmitter_RootNeverRejectedNorCounted(t *testing.T) {
	ctrl := gomock.NewController(t)
	sys := NewMockSys(ctrl)
	reg := newFakeRegistry()
	a := newTestAdmitter(t, sys, reg, 1)
	ctx := context.Background()

	expectAdmit(sys, fakeFD, userPeer)
	require.NoError(t, a.OnListenerReady(ctx, listenFD))

	for i := 1; i <= 3; i++ {
		expectAdmit(sys, fakeFD+i, rootPeer)
		require.NoError(t, a.OnListenerReady(ctx, listenFD))
	}
	assert.Equal(t, 1, a.Quota().Count())
	assert.Len(t, reg.conns, 4)
	assert.Equal(t, "1[0:0]", reg.client(t, fakeFD+1).Label())
}

func TestAdmitter_AcceptErrorStreak(t *testing.T) {
	acceptErr := syscall.EMFILE

	t.Run("fatal at limit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sys := NewMockSys(ctrl)
		a := newTestAdmitter(t, sys, newFakeRegistry(), 8)

		sys.EXPECT().Accept(listenFD).Return(-1, PeerCredential{}, acceptErr).Times(MaxAcceptErrors)
		for i := 1; i < MaxAcceptErrors; i++ {
			require.NoError(t, a.OnListenerReady(context.Background(), listenFD))
			assert.Equal(t, i, a.Streak())
		}
		err := a.OnListenerReady(context.Background(), listenFD)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAcceptStreak)
		assert.ErrorIs(t, err, ErrFatal)
		assert.ErrorIs(t, err, acceptErr)
		assert.True(t, IsFatal(err))
		assert.Equal(t, MaxAcceptErrors, a.Streak())
	})

	t.Run("success resets", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sys := NewMockSys(ctrl)
		a := newTestAdmitter(t, sys, newFakeRegistry(), 8)

		sys.EXPECT().Accept(listenFD).Return(-1, PeerCredential{}, acceptErr).Times(MaxAcceptErrors - 1)
		for range MaxAcceptErrors - 1 {
			require.NoError(t, a.OnListenerReady(context.Background(), listenFD))
		}
		expectAdmit(sys, fakeFD, userPeer)
		require.NoError(t, a.OnListenerReady(context.Background(), listenFD))
		assert.Equal(t, 0, a.Streak())

		// 重置后需要再连续失败 5 次
		sys.EXPECT().Accept(listenFD).Return(-1, PeerCredential{}, syscall.EAGAIN).Times(MaxAcceptErrors - 1)
		for range MaxAcceptErrors - 1 {
			require.NoError(t, a.OnListenerReady(context.Background(), listenFD))
		}
		assert.Equal(t, MaxAcceptErrors-1, a.Streak())
	})
}

func TestAdmitter_PeerCredFailureDropsOnlyThatConnection(t *testing.T) {
	ctrl := gomock.NewController(t)
	sys := NewMockSys(ctrl)
	reg := newFakeRegistry()
	reader := sdkmetric.NewManualReader()
	a, err := NewAdmitter(reg, 4, testOptions(sys, reader)...)
	require.NoError(t, err)
	ctx := context.Background()

	// 先积累几次真正的 accept 失败，凭据失败应将其清零
	sys.EXPECT().Accept(listenFD).Return(-1, PeerCredential{}, syscall.EMFILE).Times(MaxAcceptErrors - 1)
	for range MaxAcceptErrors - 1 {
		require.NoError(t, a.OnListenerReady(ctx, listenFD))
	}
	require.Equal(t, MaxAcceptErrors-1, a.Streak())

	credErr := fmt.Errorf("%w: %w", ErrPeerCred, ErrPeerCredUnsupported)
	sys.EXPECT().Accept(listenFD).Return(-1, PeerCredential{}, credErr).Times(2 * MaxAcceptErrors)
	for range 2 * MaxAcceptErrors {
		require.NoError(t, a.OnListenerReady(ctx, listenFD))
		assert.Equal(t, 0, a.Streak())
	}
	assert.Empty(t, reg.conns)
	assert.Equal(t, 0, a.Quota().Count())
	assert.Equal(t, int64(2*MaxAcceptErrors), collectSum(t, reader, MetricClientsRejected, func(dp metricdata.DataPoint[int64]) bool {
		v, ok := dp.Attributes.Value("reason")
		return ok && v.AsString() == reasonCred
	}))

	// 之后的正常连接照常准入
	expectAdmit(sys, fakeFD, userPeer)
	require.NoError(t, a.OnListenerReady(ctx, listenFD))
	assert.Len(t, reg.conns, 1)
}

func TestAdmitter_HardenFailure(t *testing.T) {
	tests := []struct {
		name   string
		expect func(sys *MockSys, fd int)
	}{
		{
			name: "cloexec",
			expect: func(sys *MockSys, fd int) {
				sys.EXPECT().SetCloexec(fd).Return(syscall.EBADF)
			},
		},
		{
			name: "nonblock",
			expect: func(sys *MockSys, fd int) {
				sys.EXPECT().SetCloexec(fd).Return(nil)
				sys.EXPECT().SetNonblock(fd).Return(syscall.EBADF)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			sys := NewMockSys(ctrl)
			reg := newFakeRegistry()
			a := newTestAdmitter(t, sys, reg, 4)

			sys.EXPECT().Accept(listenFD).Return(fakeFD, userPeer, nil)
			tt.expect(sys, fakeFD)
			sys.EXPECT().Close(fakeFD).Return(nil)

			require.NoError(t, a.OnListenerReady(context.Background(), listenFD))
			assert.Empty(t, reg.conns)
			// 计数不回退
			assert.Equal(t, 1, a.Quota().Count())
		})
	}
}

func TestAdmitter_RegisterFailureReleasesQuota(t *testing.T) {
	ctrl := gomock.NewController(t)
	sys := NewMockSys(ctrl)
	reg := newFakeRegistry()
	reg.addErr = errors.New("registry full")
	a := newTestAdmitter(t, sys, reg, 4)

	expectAdmit(sys, fakeFD, userPeer)
	sys.EXPECT().Close(fakeFD).Return(nil)

	require.NoError(t, a.OnListenerReady(context.Background(), listenFD))
	assert.Equal(t, 0, a.Quota().Count())
}

func TestAdmitter_CloseErrorIsLoggedOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	sys := NewMockSys(ctrl)
	a := newTestAdmitter(t, sys, newFakeRegistry(), 1)

	expectAdmit(sys, fakeFD, userPeer)
	require.NoError(t, a.OnListenerReady(context.Background(), listenFD))

	sys.EXPECT().Accept(listenFD).Return(fakeFD+1, userPeer, nil)
	sys.EXPECT().Close(fakeFD + 1).Return(syscall.EIO)
	assert.NoError(t, a.OnListenerReady(context.Background(), listenFD))
}

func TestAdmitter_SetClientMax(t *testing.T) {
	ctrl := gomock.NewController(t)
	sys := NewMockSys(ctrl)
	reg := newFakeRegistry()
	a := newTestAdmitter(t, sys, reg, 3)
	ctx := context.Background()

	for i := range 3 {
		expectAdmit(sys, fakeFD+i, userPeer)
		require.NoError(t, a.OnListenerReady(ctx, listenFD))
	}

	require.NoError(t, a.SetClientMax(1))
	assert.ErrorIs(t, a.SetClientMax(0), ErrInvalidConfig)
	assert.Equal(t, 1, a.Quota().Max())
	// 调低上限不驱逐已有连接
	assert.Len(t, reg.conns, 3)

	expectReject(sys, fakeFD+3, userPeer)
	require.NoError(t, a.OnListenerReady(ctx, listenFD))

	reg.remove(t, fakeFD)
	reg.remove(t, fakeFD+1)
	assert.Equal(t, 1, a.Quota().Count())

	expectReject(sys, fakeFD+4, userPeer)
	require.NoError(t, a.OnListenerReady(ctx, listenFD))

	reg.remove(t, fakeFD+2)
	expectAdmit(sys, fakeFD+5, userPeer)
	require.NoError(t, a.OnListenerReady(ctx, listenFD))
	assert.Equal(t, 1, a.Quota().Count())
}

func TestAdmitter_Metrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	sys := NewMockSys(ctrl)
	reg := newFakeRegistry()
	reader := sdkmetric.NewManualReader()
	a, err := NewAdmitter(reg, 1, testOptions(sys, reader)...)
	require.NoError(t, err)
	ctx := context.Background()

	expectAdmit(sys, fakeFD, userPeer)
	require.NoError(t, a.OnListenerReady(ctx, listenFD))
	expectAdmit(sys, fakeFD+1, rootPeer)
	require.NoError(t, a.OnListenerReady(ctx, listenFD))
	expectReject(sys, fakeFD+2, otherPeer)
	require.NoError(t, a.OnListenerReady(ctx, listenFD))
	sys.EXPECT().Accept(listenFD).Return(-1, PeerCredential{}, syscall.ECONNABORTED)
	require.NoError(t, a.OnListenerReady(ctx, listenFD))

	privileged := func(want bool) func(metricdata.DataPoint[int64]) bool {
		return func(dp metricdata.DataPoint[int64]) bool {
			v, ok := dp.Attributes.Value(attribute.Key("privileged"))
			return ok && v.AsBool() == want
		}
	}
	assert.Equal(t, int64(2), collectSum(t, reader, MetricClientsAccepted, nil))
	assert.Equal(t, int64(1), collectSum(t, reader, MetricClientsAccepted, privileged(true)))
	assert.Equal(t, int64(1), collectSum(t, reader, MetricClientsRejected,
		func(dp metricdata.DataPoint[int64]) bool {
			v, ok := dp.Attributes.Value(attribute.Key("reason"))
			return ok && v.AsString() == reasonQuota
		}))
	assert.Equal(t, int64(1), collectSum(t, reader, MetricAcceptErrors, nil))
	assert.Equal(t, int64(1), collectSum(t, reader, MetricClientsNonRoot, nil))

	reg.remove(t, fakeFD)
	assert.Equal(t, int64(0), collectSum(t, reader, MetricClientsNonRoot, nil))
}
