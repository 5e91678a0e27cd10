// internal/journal/journal.go

// Package journal mirrors every lobby broadcast onto a Redis list so offline
// consumers can replay event history. Publishing is fire-and-forget; the
// coordinator never waits on it and a dead Redis only costs log noise.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultQueueName is the Redis list the event records are pushed to.
var DefaultQueueName = "fraghub_events"

// EventRecord is one journaled broadcast.
type EventRecord struct {
	Event     string                 `json:"event"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp int64                  `json:"timestamp"`
}

// Journal wraps the Redis client. A nil *Journal is valid and drops records.
type Journal struct {
	rdb   *redis.Client
	queue string
	log   *logrus.Logger
}

// Connect initializes a Journal from environment variables:
//   - REDIS_ADDR (required to enable journaling)
//   - REDIS_DB (optional, default 0)
//   - JOURNAL_QUEUE_NAME (optional, default DefaultQueueName)
func Connect(logger *logrus.Logger) (*Journal, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil, nil
	}
	dbIdx := getEnvInt("REDIS_DB", 0)

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return &Journal{
		rdb:   rdb,
		queue: getEnv("JOURNAL_QUEUE_NAME", DefaultQueueName),
		log:   logger,
	}, nil
}

// Record pushes one event record to the Redis queue. Errors are logged and
// swallowed so a journaling hiccup never disturbs the lobby.
func (j *Journal) Record(event string, payload map[string]interface{}) {
	if j == nil {
		return
	}
	rec := EventRecord{
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		j.log.Warnf("journal: failed to marshal event '%s': %v", event, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := j.rdb.RPush(ctx, j.queue, data).Err(); err != nil {
		j.log.Warnf("journal: failed to RPush to '%s': %v", j.queue, err)
	}
}

// Close releases the Redis client.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.rdb.Close()
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// TeeBroadcaster journals every event before handing it to the real fanout.
// It satisfies broadcast.Broadcaster so it can wrap the hub transparently.
type TeeBroadcaster struct {
	Next interface {
		Publish(event string, payload map[string]interface{})
	}
	Journal *Journal
}

// Publish records the event then forwards it unchanged.
func (t TeeBroadcaster) Publish(event string, payload map[string]interface{}) {
	t.Journal.Record(event, payload)
	t.Next.Publish(event, payload)
}
