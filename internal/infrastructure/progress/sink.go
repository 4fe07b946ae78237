// Package progress delivers live import progress to interested
// consumers (the admin UI, logs).
package progress

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Snapshot is one progress report. Total is zero while the overall
// item count is still unknown.
type Snapshot struct {
	StoreID    uuid.UUID      `json:"store_id"`
	Phase      string         `json:"phase"`
	EntityType string         `json:"entity_type,omitempty"`
	Current    int            `json:"current"`
	Total      int            `json:"total,omitempty"`
	Percent    float64        `json:"percent"`
	Counts     map[string]int `json:"counts,omitempty"`
}

// Sink receives progress snapshots. Publishing must never fail the
// import; implementations swallow their own delivery errors.
type Sink interface {
	Publish(ctx context.Context, snap Snapshot)
}

// NopSink discards all snapshots
type NopSink struct{}

// Publish implements Sink
func (NopSink) Publish(context.Context, Snapshot) {}

// LogSink writes snapshots to the application log
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink that logs each snapshot at debug level
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("progress")}
}

// Publish implements Sink
func (s *LogSink) Publish(_ context.Context, snap Snapshot) {
	s.logger.Debug("import progress",
		zap.String("store_id", snap.StoreID.String()),
		zap.String("phase", snap.Phase),
		zap.String("entity_type", snap.EntityType),
		zap.Int("current", snap.Current),
		zap.Int("total", snap.Total),
		zap.Float64("percent", snap.Percent),
		zap.Any("counts", snap.Counts),
	)
}

// RedisSink publishes snapshots on a per-store pub/sub channel so the
// admin UI can stream them
type RedisSink struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisSink creates a redis-backed progress sink
func NewRedisSink(client *redis.Client, logger *zap.Logger) *RedisSink {
	return &RedisSink{
		client: client,
		logger: logger.Named("progress"),
	}
}

// Channel returns the pub/sub channel name for a store
func Channel(storeID uuid.UUID) string {
	return fmt.Sprintf("storekit:imports:%s", storeID)
}

// Publish implements Sink. Delivery failures are logged and dropped;
// progress reporting never fails an import.
func (s *RedisSink) Publish(ctx context.Context, snap Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		s.logger.Warn("failed to encode progress snapshot", zap.Error(err))
		return
	}
	if err := s.client.Publish(ctx, Channel(snap.StoreID), payload).Err(); err != nil {
		s.logger.Warn("failed to publish progress snapshot", zap.Error(err))
	}
}

// MultiSink fans snapshots out to several sinks
type MultiSink []Sink

// Publish implements Sink
func (m MultiSink) Publish(ctx context.Context, snap Snapshot) {
	for _, s := range m {
		s.Publish(ctx, snap)
	}
}
