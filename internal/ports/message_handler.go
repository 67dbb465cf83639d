package ports

import (
	"context"

	"github.com/mjolner/svc-commerce-events/pkg/queue"
)

// MessageHandler defines the interface for processing queue messages
type MessageHandler interface {
	ProcessMessage(ctx context.Context, msg queue.Message, ctrl *queue.MsgController) error
}
