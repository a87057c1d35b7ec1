package topology

import (
	"context"
	"strings"
	"sync"

	"smart-building-os/internal/models"

	"go.uber.org/zap"
)

// Store 建物トポロジの保持と検索
// Load 時に全件置き換え、それ以外は読み取りのみ。
type Store struct {
	mu       sync.RWMutex
	items    []models.TopologyItem
	fallback bool

	fetcher Fetcher
	logger  *zap.Logger
}

// NewStore トポロジストアを生成する
func NewStore(fetcher Fetcher, logger *zap.Logger) *Store {
	return &Store{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Load トポロジを取得してストアを置き換える
// 取得に失敗した場合はデモ用データで代替する（UI を空のまま
// 残さないための意図的な選択）。代替したことは Fallback() と
// 専用ログフィールドで観測できる。
func (s *Store) Load(ctx context.Context) {
	items, err := s.fetcher.FetchTopology(ctx)
	if err != nil {
		s.logger.Warn("Topology fetch failed, substituting demo dataset",
			zap.Bool("demo_fallback", true),
			zap.Error(err),
		)
		s.replace(demoTopology(), true)
		return
	}

	s.logger.Info("Loaded topology",
		zap.Int("item_count", len(items)),
	)
	s.replace(items, false)
}

func (s *Store) replace(items []models.TopologyItem, fallback bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.fallback = fallback
}

// Fallback デモ用データで代替しているか
func (s *Store) Fallback() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fallback
}

// Items 全エンティティのコピーを返す
func (s *Store) Items() []models.TopologyItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]models.TopologyItem, len(s.items))
	copy(items, s.items)
	return items
}

// ChildrenOf 指定エンティティを親とするエンティティを返す
func (s *Store) ChildrenOf(parentID string) []models.TopologyItem {
	return s.FilterByType(func(item models.TopologyItem) bool {
		return item.ParentID != nil && *item.ParentID == parentID
	})
}

// FilterByType 条件に一致するエンティティを返す
func (s *Store) FilterByType(pred func(models.TopologyItem) bool) []models.TopologyItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.TopologyItem
	for _, item := range s.items {
		if pred(item) {
			result = append(result, item)
		}
	}
	return result
}

// Rooms 空間エンティティ（Space）を返す
func (s *Store) Rooms() []models.TopologyItem {
	return s.FilterByType(func(item models.TopologyItem) bool {
		return item.ComponentTypeID == "Space"
	})
}

// EquipmentIn 指定した部屋に属する設備を返す
func (s *Store) EquipmentIn(roomID string) []models.TopologyItem {
	return s.ChildrenOf(roomID)
}

// Roots 親が存在しない、または親が未ロードのエンティティを返す
// 親 ID がロード済みエンティティに一致しない場合はトップレベル扱い。
func (s *Store) Roots() []models.TopologyItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	known := make(map[string]struct{}, len(s.items))
	for _, item := range s.items {
		known[item.PointID] = struct{}{}
	}

	var result []models.TopologyItem
	for _, item := range s.items {
		if item.ParentID == nil {
			result = append(result, item)
			continue
		}
		if _, ok := known[*item.ParentID]; !ok {
			result = append(result, item)
		}
	}
	return result
}

// KindOf component_type_id から機器種別を判定する（部分一致）
func KindOf(componentTypeID string) string {
	switch {
	case componentTypeID == "Space":
		return models.KindSpace
	case strings.Contains(componentTypeID, "EnvironmentalSensor"):
		return models.KindSensor
	case strings.Contains(componentTypeID, "LightingFixture"):
		return models.KindLighting
	case strings.Contains(componentTypeID, "AirConditioner"):
		return models.KindAirConditioner
	default:
		return models.KindUnknown
	}
}
