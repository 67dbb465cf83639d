package infrastructure

import (
	"context"
	"net/http"
	"time"
)

type (
	NoOp struct{}

	NoOpMetrics struct{}
)

func (d NoOp) Inc(_ string, _ int) {
}

func (n *NoOpMetrics) RecordHTTPRequest(_ context.Context, _, _ string, _ int, _ time.Duration, _, _ int64) {
}

func (n *NoOpMetrics) RecordCommand(_ context.Context, _ string, _ time.Duration, _ bool) {
}

func (n *NoOpMetrics) RecordOutboxPublish(_ context.Context, _ string, _ string) {
}

func (n *NoOpMetrics) RecordDeadLetter(_ context.Context, _ string) {
}

func (n *NoOpMetrics) RecordConsumedEvent(_ context.Context, _ string, _ string) {
}

func (n *NoOpMetrics) RecordExpiredOrders(_ context.Context, _ int64) {
}

func (n *NoOpMetrics) Handler() http.Handler {
	return http.NotFoundHandler()
}

func (n *NoOpMetrics) Shutdown(_ context.Context) error {
	return nil
}
