package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"smart-building-os/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxActive アクティブアラートの既定上限
const DefaultMaxActive = 50

// Recorder 生成したアラートの永続化先（repository が実装、任意）
type Recorder interface {
	CreateAlertEvent(ctx context.Context, alert models.Alert) error
}

// Engine しきい値ベースのアラート評価
// AlertConfig の集合とアクティブアラートのリストを所有する。
// リストは新しい順で、上限を超えた古いものから落とす。
type Engine struct {
	maxActive int
	recorder  Recorder
	logger    *zap.Logger

	mu      sync.Mutex
	configs map[string]models.AlertConfig
	alerts  []models.Alert
}

// NewEngine アラートエンジンを生成する
// recorder は nil 可（永続化なしで動作する）。
func NewEngine(maxActive int, recorder Recorder, logger *zap.Logger) *Engine {
	if maxActive <= 0 {
		maxActive = DefaultMaxActive
	}
	return &Engine{
		maxActive: maxActive,
		recorder:  recorder,
		logger:    logger,
		configs:   make(map[string]models.AlertConfig),
	}
}

// SetConfig ポイントのしきい値設定を登録・置き換えする
func (e *Engine) SetConfig(cfg models.AlertConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.configs[cfg.PointID] = cfg
}

// Config ポイントのしきい値設定を返す
func (e *Engine) Config(pointID string) (models.AlertConfig, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cfg, ok := e.configs[pointID]
	return cfg, ok
}

// Evaluate 値をしきい値と比較してアラートを生成する
// 設定が無い・無効・しきい値内の場合は nil を返す。
// しきい値との差分で重要度を決める: diff > 5 → critical、
// diff > 2 → high、それ以外 → medium。しきい値ちょうどは違反しない。
func (e *Engine) Evaluate(pointID string, value float64, entityName string) *models.Alert {
	e.mu.Lock()
	cfg, ok := e.configs[pointID]
	e.mu.Unlock()

	if !ok || !cfg.Enabled {
		return nil
	}

	var message string
	var diff float64
	switch {
	case cfg.MaxThreshold != nil && value > *cfg.MaxThreshold:
		diff = value - *cfg.MaxThreshold
		message = fmt.Sprintf("High value detected: %v (threshold: %v)", value, *cfg.MaxThreshold)
	case cfg.MinThreshold != nil && value < *cfg.MinThreshold:
		diff = *cfg.MinThreshold - value
		message = fmt.Sprintf("Low value detected: %v (threshold: %v)", value, *cfg.MinThreshold)
	default:
		return nil
	}

	severity := models.SeverityMedium
	if diff > 5 {
		severity = models.SeverityCritical
	} else if diff > 2 {
		severity = models.SeverityHigh
	}

	newAlert := models.Alert{
		ID:           uuid.New().String(),
		PointID:      pointID,
		EntityName:   entityName,
		Message:      message,
		Severity:     severity,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Acknowledged: false,
	}

	e.mu.Lock()
	e.alerts = append([]models.Alert{newAlert}, e.alerts...)
	if len(e.alerts) > e.maxActive {
		e.alerts = e.alerts[:e.maxActive]
	}
	e.mu.Unlock()

	e.logger.Info("Alert raised",
		zap.String("alert_id", newAlert.ID),
		zap.String("point_id", pointID),
		zap.String("severity", severity),
		zap.Float64("value", value),
	)

	if e.recorder != nil {
		if err := e.recorder.CreateAlertEvent(context.Background(), newAlert); err != nil {
			// 永続化失敗で評価は止めない
			e.logger.Error("Failed to record alert event",
				zap.String("alert_id", newAlert.ID),
				zap.Error(err),
			)
		}
	}

	return &newAlert
}

// Acknowledge アラートを確認済みにする
// 未知の ID は no-op。2回呼んでも結果は変わらない。
func (e *Engine) Acknowledge(alertID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.alerts {
		if e.alerts[i].ID == alertID {
			e.alerts[i].Acknowledged = true
			return
		}
	}
}

// Dismiss アラートをリストから取り除く
// 未知の ID は no-op。
func (e *Engine) Dismiss(alertID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.alerts {
		if e.alerts[i].ID == alertID {
			e.alerts = append(e.alerts[:i], e.alerts[i+1:]...)
			return
		}
	}
}

// Alerts アクティブアラートのコピー（新しい順）
func (e *Engine) Alerts() []models.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	alerts := make([]models.Alert, len(e.alerts))
	copy(alerts, e.alerts)
	return alerts
}

// UnacknowledgedCount 未確認アラートの件数（ヘッダのバッジ表示用）
func (e *Engine) UnacknowledgedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	count := 0
	for _, a := range e.alerts {
		if !a.Acknowledged {
			count++
		}
	}
	return count
}

func floatPtr(f float64) *float64 { return &f }

// DefaultConfigs デモ用の初期しきい値設定
// 温度センサー（18〜28℃）と照明の調光率（0〜100%）。
func DefaultConfigs() []models.AlertConfig {
	return []models.AlertConfig{
		{PointID: "3", MinThreshold: floatPtr(18), MaxThreshold: floatPtr(28), Enabled: true},
		{PointID: "4", MinThreshold: floatPtr(0), MaxThreshold: floatPtr(100), Enabled: true},
	}
}
