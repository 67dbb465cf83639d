package runtime

import (
	"os"
)

type (
	ServiceOption func(*ServiceCtx)

	PublisherOption func(*PublisherCtx)

	SubscriberOption func(*SubscriberCtx)
)

// WithUsersRole runs the users service: user commands, the users outbox and
// its drainer.
func WithUsersRole() ServiceOption {
	return func(ctx *ServiceCtx) {
		ctx.role = WithUsersService
	}
}

// WithOrdersRole runs the orders service: order commands, the orders outbox
// and its drainer, the expiry scanner and the user-inactivation consumer.
func WithOrdersRole() ServiceOption {
	return func(ctx *ServiceCtx) {
		ctx.role = WithOrdersService
	}
}

// WithRelayRole runs the SSE fan-out relay.
func WithRelayRole() ServiceOption {
	return func(ctx *ServiceCtx) {
		ctx.role = WithRelayService
	}
}

func WithServiceTermination(ch chan os.Signal) ServiceOption {
	return func(ctx *ServiceCtx) {
		ctx.shutdownChannel = ch
	}
}

func WithPublisherTermination(ch chan os.Signal) PublisherOption {
	return func(ctx *PublisherCtx) {
		ctx.shutdownChannel = ch
	}
}

func WithSubscriberTermination(ch chan os.Signal) SubscriberOption {
	return func(ctx *SubscriberCtx) {
		ctx.shutdownChannel = ch
	}
}

func WithWaitingForServer() ServiceOption {
	return func(ctx *ServiceCtx) {
		ctx.serverReady = make(chan struct{})
	}
}
