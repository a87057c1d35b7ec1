package timeseries

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smart-building-os/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// HistoryStore Redis による時系列ウィンドウの永続化
// 実履歴の取り込み口。バッファ単体でも動作し、これは任意の拡張。
type HistoryStore struct {
	redisClient *redis.Client
	keyPrefix   string
	keySuffix   string
	ttl         time.Duration
	logger      *zap.Logger
}

// NewHistoryStore 履歴ストアを生成する
func NewHistoryStore(redisClient *redis.Client, keyPrefix, keySuffix string, ttlSeconds int, logger *zap.Logger) *HistoryStore {
	return &HistoryStore{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
		keySuffix:   keySuffix,
		ttl:         time.Duration(ttlSeconds) * time.Second,
		logger:      logger,
	}
}

func (h *HistoryStore) key(pointID string) string {
	return fmt.Sprintf("%s%s%s", h.keyPrefix, pointID, h.keySuffix)
}

// SaveWindow ポイントのウィンドウを保存する
func (h *HistoryStore) SaveWindow(ctx context.Context, pointID string, points []models.TimeSeriesPoint) error {
	jsonData, err := json.Marshal(points)
	if err != nil {
		return fmt.Errorf("failed to marshal history window: %w", err)
	}

	if err := h.redisClient.Set(ctx, h.key(pointID), jsonData, h.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set history cache: %w", err)
	}

	h.logger.Debug("Saved history window",
		zap.String("point_id", pointID),
		zap.Int("sample_count", len(points)),
	)
	return nil
}

// LoadWindow ポイントのウィンドウを読み出す
func (h *HistoryStore) LoadWindow(ctx context.Context, pointID string) ([]models.TimeSeriesPoint, error) {
	val, err := h.redisClient.Get(ctx, h.key(pointID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("history not found for point: %s", pointID)
		}
		return nil, fmt.Errorf("failed to get history cache: %w", err)
	}

	var points []models.TimeSeriesPoint
	if err := json.Unmarshal([]byte(val), &points); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history window: %w", err)
	}

	return points, nil
}
