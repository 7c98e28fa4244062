package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one consumed message. A non-nil error triggers
// the retry path and, when retries are exhausted, the DLQ.
type MessageHandler func(ctx context.Context, msg kafka.Message) error

// Consumer reads from a topic with a small worker pool.
type Consumer struct {
	reader  *kafka.Reader
	dlq     *kafka.Writer
	cfg     *ConsumerConfig
	handler MessageHandler
	hook    ConsumerHook

	msgCh  chan kafka.Message
	cancel context.CancelFunc
	wg     sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewConsumer creates a consumer for the given topic.
func NewConsumer(topic string, handler MessageHandler, opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		WorkerCount: 2,
		BufferSize:  64,
		RetryMax:    3,
		BackoffMin:  500 * time.Millisecond,
		BackoffMax:  10 * time.Second,
		MinBytes:    1,
		MaxBytes:    10e6,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if cfg.GroupID == "" {
		return nil, fmt.Errorf("group id is required")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler is required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    topic,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
	})

	var dlq *kafka.Writer
	if cfg.DLQTopic != "" {
		dlq = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.DLQTopic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		}
	}

	return &Consumer{
		reader:  reader,
		dlq:     dlq,
		cfg:     cfg,
		handler: handler,
		hook:    NoopHook{},
		msgCh:   make(chan kafka.Message, cfg.BufferSize),
	}, nil
}

// WithHook attaches a lifecycle hook. Must be called before Start.
func (c *Consumer) WithHook(hook ConsumerHook) *Consumer {
	if hook != nil {
		c.hook = hook
	}
	return c
}

// Start launches the fetch loop and worker pool. Safe to call once.
func (c *Consumer) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		ctx, c.cancel = context.WithCancel(ctx)

		for i := 0; i < c.cfg.WorkerCount; i++ {
			c.wg.Add(1)
			go c.worker(ctx)
		}

		c.wg.Add(1)
		go c.fetchLoop(ctx)
	})
}

func (c *Consumer) fetchLoop(ctx context.Context) {
	defer c.wg.Done()
	defer close(c.msgCh)

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// transient fetch error, back off briefly and keep reading
			select {
			case <-time.After(c.cfg.BackoffMin):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case c.msgCh <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Consumer) worker(ctx context.Context) {
	defer c.wg.Done()

	for msg := range c.msgCh {
		c.process(ctx, msg)
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	c.hook.OnMessage(ctx, msg)

	var err error
	backoff := c.cfg.BackoffMin
	for attempt := 0; attempt <= c.cfg.RetryMax; attempt++ {
		if attempt > 0 {
			c.hook.OnRetry(ctx, msg, attempt, err)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			backoff *= 2
			if backoff > c.cfg.BackoffMax {
				backoff = c.cfg.BackoffMax
			}
		}

		err = c.handler(ctx, msg)
		if err == nil {
			break
		}
	}

	c.hook.OnProcessed(ctx, msg, err)

	if err != nil && c.dlq != nil {
		dlqErr := c.dlq.WriteMessages(ctx, kafka.Message{
			Key:   msg.Key,
			Value: msg.Value,
			Headers: append(msg.Headers, kafka.Header{
				Key:   "x-error",
				Value: []byte(err.Error()),
			}),
			Time: time.Now(),
		})
		c.hook.OnDeadLetter(ctx, msg, err)
		_ = dlqErr
	}
}

// Stop cancels the fetch loop, drains workers and closes the reader. Waits
// up to the given timeout for in-flight messages to finish.
func (c *Consumer) Stop(timeout time.Duration) error {
	var err error
	c.stopOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}

		done := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(timeout):
			err = fmt.Errorf("consumer stop timed out after %s", timeout)
		}

		if cerr := c.reader.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if c.dlq != nil {
			if cerr := c.dlq.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	})
	return err
}
