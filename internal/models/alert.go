package models

// アラート重要度
// low はしきい値評価では生成されない（他のアラートソース用に予約）。
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// AlertConfig ポイント単位のしきい値設定
// 設定が存在しないポイントはアラート対象外。
type AlertConfig struct {
	PointID      string   `json:"point_id"`
	MinThreshold *float64 `json:"min_threshold,omitempty"`
	MaxThreshold *float64 `json:"max_threshold,omitempty"`
	Enabled      bool     `json:"enabled"`
}

// Alert しきい値違反から生成されるアラート
type Alert struct {
	ID           string `json:"id"`
	PointID      string `json:"point_id"`
	EntityName   string `json:"entity_name"`
	Message      string `json:"message"`
	Severity     string `json:"severity"`
	Timestamp    string `json:"timestamp"`
	Acknowledged bool   `json:"acknowledged"`
}
