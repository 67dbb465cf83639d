package adapters

import (
	"context"
	"strings"
	"time"

	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/shared/decorator"
)

// MetricsAdapter bridges the decorator counter keys onto the OTEL command
// instruments. Keys look like "commands.createusercommand.success".
type MetricsAdapter struct {
	metrics infrastructure.Metrics
}

func NewMetricsAdapter(metrics infrastructure.Metrics) decorator.MetricsClient {
	return &MetricsAdapter{
		metrics: metrics,
	}
}

func (m *MetricsAdapter) Inc(key string, value int) {
	parts := strings.Split(key, ".")
	if len(parts) != 3 {
		return
	}

	ctx := context.Background()
	action := parts[1]

	switch parts[2] {
	case "success":
		m.metrics.RecordCommand(ctx, action, 0, true)
	case "failure":
		m.metrics.RecordCommand(ctx, action, 0, false)
	case "duration":
		m.metrics.RecordCommand(ctx, action, time.Duration(value)*time.Second, true)
	}
}
