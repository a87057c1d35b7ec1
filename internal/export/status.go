package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"smart-building-os/internal/models"
)

// StatusSnapshot ダッシュボードの状態スナップショット
// 人が読める JSON としてダウンロードさせるための形。
type StatusSnapshot struct {
	GeneratedAt         string         `json:"generated_at"`
	Connected           bool           `json:"connected"`
	DemoFallback        bool           `json:"demo_fallback"`
	TopologyCount       int            `json:"topology_count"`
	CachedPoints        int            `json:"cached_points"`
	StaleDrops          int64          `json:"stale_drops"`
	UnacknowledgedCount int            `json:"unacknowledged_count"`
	ActiveAlerts        []models.Alert `json:"active_alerts"`
}

// WriteStatusJSON スナップショットをインデント付き JSON で書き出す
func WriteStatusJSON(w io.Writer, snapshot StatusSnapshot) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snapshot); err != nil {
		return fmt.Errorf("failed to encode status snapshot: %w", err)
	}
	return nil
}

// StatusFilename 日付入りのダウンロードファイル名
func StatusFilename(t time.Time) string {
	return fmt.Sprintf("dashboard-status-%s.json", t.Format("2006-01-02"))
}
