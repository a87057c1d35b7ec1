package subscription

import (
	"sort"
	"sync"

	"smart-building-os/internal/models"

	"go.uber.org/zap"
)

// Sender 購読フレームの送信先（stream.Client が実装）
type Sender interface {
	Send(v any)
}

// Manager 購読対象ポイントの管理
// 「いま見えている」ポイント集合の差分から subscribe_points /
// unsubscribe_points を発行する。空の point_id リストは送らない。
type Manager struct {
	sender Sender
	logger *zap.Logger

	mu      sync.Mutex
	current map[string]struct{}
}

// NewManager 購読マネージャを生成する
func NewManager(sender Sender, logger *zap.Logger) *Manager {
	return &Manager{
		sender:  sender,
		logger:  logger,
		current: make(map[string]struct{}),
	}
}

// SetInterest 購読対象の集合を置き換える
// 前回との差分のみ送信する。既存の購読に対しては何も送らない。
func (m *Manager) SetInterest(pointIDs []string) {
	next := make(map[string]struct{}, len(pointIDs))
	for _, id := range pointIDs {
		if id != "" {
			next[id] = struct{}{}
		}
	}

	m.mu.Lock()
	var added, removed []string
	for id := range m.current {
		if _, ok := next[id]; !ok {
			removed = append(removed, id)
		}
	}
	for id := range next {
		if _, ok := m.current[id]; !ok {
			added = append(added, id)
		}
	}
	m.current = next
	m.mu.Unlock()

	m.sendRequest(models.ActionUnsubscribePoints, removed)
	m.sendRequest(models.ActionSubscribePoints, added)
}

// Resubscribe 現在の購読集合を送り直す（再接続時）
func (m *Manager) Resubscribe() {
	m.sendRequest(models.ActionSubscribePoints, m.Current())
}

// Clear すべての購読を解除する（選択解除・終了時）
func (m *Manager) Clear() {
	m.mu.Lock()
	all := keys(m.current)
	m.current = make(map[string]struct{})
	m.mu.Unlock()

	m.sendRequest(models.ActionUnsubscribePoints, all)
}

// Current 現在の購読集合（ソート済み）
func (m *Manager) Current() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return keys(m.current)
}

func (m *Manager) sendRequest(action string, pointIDs []string) {
	if len(pointIDs) == 0 {
		return
	}
	sort.Strings(pointIDs)

	m.sender.Send(models.SubscriptionRequest{
		Action:         action,
		PointIDs:       pointIDs,
		SubscriptionID: models.SubscriptionID,
	})
	m.logger.Debug("Sent subscription request",
		zap.String("action", action),
		zap.Int("point_count", len(pointIDs)),
	)
}

func keys(set map[string]struct{}) []string {
	result := make([]string, 0, len(set))
	for id := range set {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}
