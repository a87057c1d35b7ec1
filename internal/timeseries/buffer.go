package timeseries

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"smart-building-os/internal/models"

	"go.uber.org/zap"
)

// WindowSize チャート用に保持するサンプル数（1時間刻みで24時間分）
const WindowSize = 24

// Buffer ポイントごとの時系列ウィンドウ
// ライブ値キャッシュは最新値しか持たないため、チャート描画は
// このバッファから読む。履歴ストアが無い環境では Synthesize で
// 形状の決まった合成データを生成する。
type Buffer struct {
	mu      sync.Mutex
	windows map[string][]models.TimeSeriesPoint
	logger  *zap.Logger
}

// NewBuffer 時系列バッファを生成する
func NewBuffer(logger *zap.Logger) *Buffer {
	return &Buffer{
		windows: make(map[string][]models.TimeSeriesPoint),
		logger:  logger,
	}
}

// Synthesize 現在時刻を終端とする24時間分の合成ウィンドウを生成する
// 値は基準値 + 正弦波 + ノイズ、品質は低確率で UNCERTAIN。
// 生成したウィンドウはバッファに保持され、戻り値はそのコピー。
func (b *Buffer) Synthesize(pointID string) []models.TimeSeriesPoint {
	now := time.Now()
	points := make([]models.TimeSeriesPoint, 0, WindowSize)

	baseValue := 50.0
	if pointID == "3" {
		baseValue = 22.0
	}

	for i := WindowSize - 1; i >= 0; i-- {
		timestamp := now.Add(-time.Duration(i) * time.Hour)
		value := baseValue + math.Sin(float64(i)*0.5)*5 + (rand.Float64()-0.5)*3

		quality := models.QualityGood
		if rand.Float64() <= 0.1 {
			quality = models.QualityUncertain
		}

		points = append(points, models.TimeSeriesPoint{
			Timestamp: timestamp.Format(time.RFC3339),
			Value:     math.Round(value*10) / 10,
			Quality:   quality,
		})
	}

	b.mu.Lock()
	b.windows[pointID] = points
	b.mu.Unlock()

	b.logger.Debug("Synthesized time series window",
		zap.String("point_id", pointID),
		zap.Int("sample_count", len(points)),
	)

	return b.Window(pointID)
}

// Append サンプルを追加する
// ウィンドウが上限を超えたら最古のサンプルを落とす。
func (b *Buffer) Append(pointID string, pt models.TimeSeriesPoint) {
	b.mu.Lock()
	defer b.mu.Unlock()

	window := append(b.windows[pointID], pt)
	if len(window) > WindowSize {
		window = window[len(window)-WindowSize:]
	}
	b.windows[pointID] = window
}

// SetWindow ウィンドウを丸ごと置き換える（履歴ストアからの復元用）
func (b *Buffer) SetWindow(pointID string, points []models.TimeSeriesPoint) {
	if len(points) > WindowSize {
		points = points[len(points)-WindowSize:]
	}
	window := make([]models.TimeSeriesPoint, len(points))
	copy(window, points)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.windows[pointID] = window
}

// Window ポイントのウィンドウのコピーを返す
func (b *Buffer) Window(pointID string) []models.TimeSeriesPoint {
	b.mu.Lock()
	defer b.mu.Unlock()

	window := b.windows[pointID]
	result := make([]models.TimeSeriesPoint, len(window))
	copy(result, window)
	return result
}
