package logger

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Publisher receives flushed error aggregates (e.g. a Kafka producer).
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

type CollectorConfig struct {
	FlushInterval  time.Duration // e.g. 30s
	CountThreshold int           // max unique entries before an early flush
	Topic          string
	Publisher      Publisher
}

// AggregatedEntry is one deduplicated error log with occurrence counts.
type AggregatedEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// ErrorCollector deduplicates repeated error logs and flushes them to a
// publisher periodically. Provider failures during fallback chains repeat
// rapidly, so aggregation keeps the error topic small.
type ErrorCollector struct {
	config *CollectorConfig
	logMap map[string]*AggregatedEntry
	mutex  sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewErrorCollector(config *CollectorConfig) *ErrorCollector {
	ctx, cancel := context.WithCancel(context.Background())

	c := &ErrorCollector{
		config: config,
		logMap: make(map[string]*AggregatedEntry),
		ctx:    ctx,
		cancel: cancel,
	}

	c.wg.Add(1)
	go c.periodicFlush()

	return c
}

func (c *ErrorCollector) Add(level, message string, fields map[string]interface{}, caller string) {
	now := time.Now()
	key := c.entryKey(level, message, caller)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if entry, exists := c.logMap[key]; exists {
		entry.Count++
		entry.LastSeen = now
		entry.Fields = fields
	} else {
		c.logMap[key] = &AggregatedEntry{
			Level:     level,
			Message:   message,
			Fields:    fields,
			Caller:    caller,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}

	if len(c.logMap) >= c.config.CountThreshold {
		c.flush()
	}
}

// entryKey hashes level+message+caller; fields vary per occurrence (symbol,
// provider) and deliberately do not split aggregation buckets.
func (c *ErrorCollector) entryKey(level, message, caller string) string {
	b, _ := json.Marshal([3]string{level, message, caller})
	return fmt.Sprintf("%x", sha256.Sum256(b))
}

func (c *ErrorCollector) periodicFlush() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mutex.Lock()
			c.flush()
			c.mutex.Unlock()
		case <-c.ctx.Done():
			c.mutex.Lock()
			c.flush()
			c.mutex.Unlock()
			return
		}
	}
}

// flush must be called with mutex held.
func (c *ErrorCollector) flush() {
	if len(c.logMap) == 0 {
		return
	}

	logs := make([]AggregatedEntry, 0, len(c.logMap))
	for _, entry := range c.logMap {
		logs = append(logs, *entry)
	}
	c.logMap = make(map[string]*AggregatedEntry)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := c.config.Publisher.PublishMessage(ctx, c.config.Topic, logs); err != nil {
			fmt.Printf("failed to publish aggregated logs: %v\n", err)
		}
	}()
}

func (c *ErrorCollector) Close() {
	c.cancel()
	c.wg.Wait()
}
