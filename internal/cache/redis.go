// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jason-s-yu/topcard/internal/logging"
	"github.com/jason-s-yu/topcard/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultQueueName is the Redis list that settled rounds are pushed to.
const DefaultQueueName = "topcard_rounds"

// Connect opens a client to the Redis server at addr and pings it.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// History appends round records to a Redis list and reads them back.
type History struct {
	rdb    *redis.Client
	queue  string
	logger *logrus.Logger
}

// NewHistory uses queue as the list name, or DefaultQueueName when empty.
func NewHistory(rdb *redis.Client, queue string, logger *logrus.Logger) *History {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &History{rdb: rdb, queue: queue, logger: logging.OrDiscard(logger)}
}

// PublishRound serializes the record to JSON and pushes it onto the list.
func (h *History) PublishRound(ctx context.Context, record models.RoundRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal round record: %w", err)
	}
	if err := h.rdb.RPush(ctx, h.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", h.queue, err)
	}
	h.logger.WithFields(logrus.Fields{
		"game":  record.GameID,
		"round": record.RoundIndex,
		"queue": h.queue,
	}).Debug("round published")
	return nil
}

// RecentRounds returns up to n of the most recent records, oldest first.
func (h *History) RecentRounds(ctx context.Context, n int) ([]models.RoundRecord, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := h.rdb.LRange(ctx, h.queue, int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read Redis list '%s': %w", h.queue, err)
	}

	records := make([]models.RoundRecord, 0, len(raw))
	for _, item := range raw {
		var rec models.RoundRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			h.logger.WithError(err).Warn("skipping undecodable round record")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Len returns the number of records in the list.
func (h *History) Len(ctx context.Context) (int64, error) {
	return h.rdb.LLen(ctx, h.queue).Result()
}
