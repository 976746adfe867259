package xsock

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// 指标名称。
const (
	meterName = "github.com/omeyang/xacpid/pkg/ipc/xsock"

	MetricClientsAccepted = "xacpid.clients.accepted"
	MetricClientsRejected = "xacpid.clients.rejected"
	MetricAcceptErrors    = "xacpid.accept.errors"
	MetricClientsNonRoot  = "xacpid.clients.nonroot"
)

// 拒绝原因。
const (
	reasonQuota    = "quota"
	reasonCred     = "cred"
	reasonHarden   = "harden"
	reasonRegister = "register"
)

var (
	attrPrivileged   = metric.WithAttributeSet(attribute.NewSet(attribute.Bool("privileged", true)))
	attrUnprivileged = metric.WithAttributeSet(attribute.NewSet(attribute.Bool("privileged", false)))
)

type admitMetrics struct {
	accepted     metric.Int64Counter
	rejected     metric.Int64Counter
	acceptErrors metric.Int64Counter
	nonRoot      metric.Int64UpDownCounter
}

func newAdmitMetrics(mp metric.MeterProvider) (*admitMetrics, error) {
	meter := mp.Meter(meterName)

	accepted, err1 := meter.Int64Counter(MetricClientsAccepted,
		metric.WithDescription("Client connections admitted and registered"),
		metric.WithUnit("{connection}"))
	rejected, err2 := meter.Int64Counter(MetricClientsRejected,
		metric.WithDescription("Client connections closed before registration"),
		metric.WithUnit("{connection}"))
	acceptErrors, err3 := meter.Int64Counter(MetricAcceptErrors,
		metric.WithDescription("Failed accept calls on the listening socket"),
		metric.WithUnit("{error}"))
	nonRoot, err4 := meter.Int64UpDownCounter(MetricClientsNonRoot,
		metric.WithDescription("Non-root clients counted against the quota"),
		metric.WithUnit("{connection}"))

	if err := errors.Join(err1, err2, err3, err4); err != nil {
		return nil, err
	}
	return &admitMetrics{
		accepted:     accepted,
		rejected:     rejected,
		acceptErrors: acceptErrors,
		nonRoot:      nonRoot,
	}, nil
}

func (m *admitMetrics) recordAccepted(ctx context.Context, cred PeerCredential) {
	if cred.Privileged() {
		m.accepted.Add(ctx, 1, attrPrivileged)
		return
	}
	m.accepted.Add(ctx, 1, attrUnprivileged)
}

func (m *admitMetrics) recordRejected(ctx context.Context, reason string) {
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *admitMetrics) recordAcceptError(ctx context.Context) {
	m.acceptErrors.Add(ctx, 1)
}

func (m *admitMetrics) recordNonRoot(ctx context.Context, delta int64) {
	m.nonRoot.Add(ctx, delta)
}
