package models

// WebSocket フレームの action
const (
	ActionPointUpdate       = "point_update"
	ActionSubscribePoints   = "subscribe_points"
	ActionUnsubscribePoints = "unsubscribe_points"
)

// SubscriptionID このセッションの全購読をまとめる固定スコープ
const SubscriptionID = "dashboard_view"

// StreamMessage 受信フレーム
type StreamMessage struct {
	Action string      `json:"action"`
	Data   []PointData `json:"data"`
}

// SubscriptionRequest 送信フレーム（subscribe_points / unsubscribe_points）
type SubscriptionRequest struct {
	Action         string   `json:"action"`
	PointIDs       []string `json:"point_id"`
	SubscriptionID string   `json:"subscription_id"`
}
