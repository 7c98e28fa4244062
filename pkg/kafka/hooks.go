package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// ConsumerHook observes consumer lifecycle events.
type ConsumerHook interface {
	OnMessage(ctx context.Context, msg kafka.Message)
	OnProcessed(ctx context.Context, msg kafka.Message, err error)
	OnRetry(ctx context.Context, msg kafka.Message, attempt int, err error)
	OnDeadLetter(ctx context.Context, msg kafka.Message, err error)
}

// NoopHook is a ConsumerHook that does nothing.
type NoopHook struct{}

func (NoopHook) OnMessage(context.Context, kafka.Message)             {}
func (NoopHook) OnProcessed(context.Context, kafka.Message, error)    {}
func (NoopHook) OnRetry(context.Context, kafka.Message, int, error)   {}
func (NoopHook) OnDeadLetter(context.Context, kafka.Message, error)   {}

// HookFuncs adapts plain functions into a ConsumerHook. Nil funcs are skipped.
type HookFuncs struct {
	Message    func(ctx context.Context, msg kafka.Message)
	Processed  func(ctx context.Context, msg kafka.Message, err error)
	Retry      func(ctx context.Context, msg kafka.Message, attempt int, err error)
	DeadLetter func(ctx context.Context, msg kafka.Message, err error)
}

func (h HookFuncs) OnMessage(ctx context.Context, msg kafka.Message) {
	if h.Message != nil {
		h.Message(ctx, msg)
	}
}

func (h HookFuncs) OnProcessed(ctx context.Context, msg kafka.Message, err error) {
	if h.Processed != nil {
		h.Processed(ctx, msg, err)
	}
}

func (h HookFuncs) OnRetry(ctx context.Context, msg kafka.Message, attempt int, err error) {
	if h.Retry != nil {
		h.Retry(ctx, msg, attempt, err)
	}
}

func (h HookFuncs) OnDeadLetter(ctx context.Context, msg kafka.Message, err error) {
	if h.DeadLetter != nil {
		h.DeadLetter(ctx, msg, err)
	}
}
