package alert

import (
	"context"
	"math/rand"
	"time"

	"smart-building-os/internal/cache"
	"smart-building-os/internal/models"

	"go.uber.org/zap"
)

// Watcher 監視中エンティティの周期的なしきい値評価
// 上流ストリームが毎周期値を送ってくるとは限らないため、イベント駆動
// ではなくポーリングで取りこぼしを防ぐ。Watch はコンテキストの寿命に
// 束縛され、選択解除で止まる。
type Watcher struct {
	engine   *Engine
	cache    *cache.LiveCache
	interval time.Duration
	logger   *zap.Logger
}

// NewWatcher ウォッチャを生成する
func NewWatcher(engine *Engine, liveCache *cache.LiveCache, interval time.Duration, logger *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Watcher{
		engine:   engine,
		cache:    liveCache,
		interval: interval,
		logger:   logger,
	}
}

// Watch 指定エンティティ集合を周期評価する
// ctx のキャンセルまでブロックする。値はキャッシュの最新値を使い、
// 数値が無いポイントは合成サンプルで代替する。
func (w *Watcher) Watch(ctx context.Context, entities []models.TopologyItem) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("Started alert watch",
		zap.Int("entity_count", len(entities)),
		zap.Duration("interval", w.interval),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopped alert watch")
			return
		case <-ticker.C:
			w.evaluateAll(entities)
		}
	}
}

func (w *Watcher) evaluateAll(entities []models.TopologyItem) {
	for _, entity := range entities {
		value, ok := w.latestValue(entity.PointID)
		if !ok {
			value = syntheticSample()
		}
		w.engine.Evaluate(entity.PointID, value, entity.EntityName)
	}
}

func (w *Watcher) latestValue(pointID string) (float64, bool) {
	data, ok := w.cache.Get(pointID)
	if !ok {
		return 0, false
	}
	return data.AsFloat()
}

// syntheticSample 実値が無いときの代替サンプル（20〜49）
func syntheticSample() float64 {
	return float64(rand.Intn(30) + 20)
}
