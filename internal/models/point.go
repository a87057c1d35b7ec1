package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// データ品質タグ
const (
	QualityGood      = "GOOD"
	QualityUncertain = "UNCERTAIN"
)

// PointData ポイントの最新値（WebSocket / API レスポンス）
// Value is numeric or textual depending on the point; keep the wire value
// as-is and convert on demand.
type PointData struct {
	PointID   string `json:"point_id"`
	Value     any    `json:"value"`
	Quality   string `json:"quality"`
	Timestamp string `json:"timestamp"`
	Unit      string `json:"unit,omitempty"`
}

// AsFloat 数値としての値を返す（文字列値のポイントは ok=false）
func (p PointData) AsFloat() (float64, bool) {
	switch v := p.Value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Time Timestamp を time.Time として返す（RFC3339 以外は ok=false）
func (p PointData) Time() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, p.Timestamp)
	return t, err == nil
}

// TimeSeriesPoint チャート用の時系列1サンプル
type TimeSeriesPoint struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
	Quality   string  `json:"quality"`
}
