package cache

import (
	"sync"

	"smart-building-os/internal/models"

	"go.uber.org/zap"
)

// Options ライブ値キャッシュのオプション
type Options struct {
	// RejectStale が true の場合、キャッシュ済みの値よりタイムスタンプが
	// 古い受信値を破棄する。上流のソース実装は到着順を常に採用していた
	// ため、デフォルトは false（last-write-wins）。
	RejectStale bool
}

// LiveCache ポイントごとの最新値キャッシュ
// 書き込みは Connection Manager のみ、読み取りは UI とアラート評価。
type LiveCache struct {
	mu         sync.RWMutex
	values     map[string]models.PointData
	opts       Options
	staleDrops int64
	logger     *zap.Logger
}

// NewLiveCache キャッシュを生成する
func NewLiveCache(opts Options, logger *zap.Logger) *LiveCache {
	return &LiveCache{
		values: make(map[string]models.PointData),
		opts:   opts,
		logger: logger,
	}
}

// Upsert ポイントの最新値を無条件に置き換える
// RejectStale 有効時のみ、両者のタイムスタンプが解析可能で受信値の方が
// 古い場合に破棄する。
func (c *LiveCache) Upsert(data models.PointData) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opts.RejectStale {
		if prev, ok := c.values[data.PointID]; ok {
			prevTime, okPrev := prev.Time()
			newTime, okNew := data.Time()
			if okPrev && okNew && newTime.Before(prevTime) {
				c.staleDrops++
				c.logger.Debug("Dropped stale reading",
					zap.String("point_id", data.PointID),
					zap.String("cached_timestamp", prev.Timestamp),
					zap.String("arrived_timestamp", data.Timestamp),
				)
				return
			}
		}
	}

	c.values[data.PointID] = data
}

// UpsertAll 1フレーム分の値を配列順に適用する
// 同一フレーム内に同じ point_id が複数ある場合は後の要素が勝つ。
func (c *LiveCache) UpsertAll(data []models.PointData) {
	for _, d := range data {
		c.Upsert(d)
	}
}

// Get ポイントの最新値を返す
func (c *LiveCache) Get(pointID string) (models.PointData, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.values[pointID]
	return data, ok
}

// Snapshot 全ポイントの最新値のコピーを返す
func (c *LiveCache) Snapshot() map[string]models.PointData {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make(map[string]models.PointData, len(c.values))
	for k, v := range c.values {
		snapshot[k] = v
	}
	return snapshot
}

// Len キャッシュされているポイント数
func (c *LiveCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

// StaleDrops RejectStale により破棄した受信値の累計
func (c *LiveCache) StaleDrops() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.staleDrops
}
