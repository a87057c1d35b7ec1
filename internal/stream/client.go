package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"smart-building-os/internal/cache"
	"smart-building-os/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// State 接続状態
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Client ライブデータ用 WebSocket 接続の管理
// 接続は常に1本。受信フレームは到着順に処理し、point_update の値を
// ライブ値キャッシュへ流し込む。切断後の自動再接続は行わない
// （リトライ方針は呼び出し側に委ねる）。
type Client struct {
	url              string
	handshakeTimeout time.Duration
	cache            *cache.LiveCache
	logger           *zap.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	state   State
	onState func(connected bool)
}

// NewClient 接続マネージャを生成する
func NewClient(url string, handshakeTimeout time.Duration, liveCache *cache.LiveCache, logger *zap.Logger) *Client {
	return &Client{
		url:              url,
		handshakeTimeout: handshakeTimeout,
		cache:            liveCache,
		logger:           logger,
		state:            StateDisconnected,
	}
}

// OnStateChange 接続状態の変化を通知するコールバックを設定する
// Connect より前に設定すること。再購読と UI の接続表示に使う。
func (c *Client) OnStateChange(fn func(connected bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onState = fn
}

// State 現在の接続状態
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected 接続中かどうか
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Connect WebSocket 接続を確立し受信ループを開始する
// すでに接続中・接続処理中の場合は何もしない。
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.mu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: c.handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()
		return fmt.Errorf("failed to dial %s: %w", c.url, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.state = StateConnected
	onState := c.onState
	c.mu.Unlock()

	c.logger.Info("Stream connected",
		zap.String("url", c.url),
	)
	if onState != nil {
		onState(true)
	}

	go c.readLoop(conn)
	return nil
}

// readLoop 受信フレームを到着順に処理する
// 読み取りエラーで接続を破棄して終了する。
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			c.logger.Info("Stream disconnected",
				zap.Error(err),
			)
			c.teardown(conn)
			return
		}
		c.handleFrame(payload)
	}
}

// handleFrame 1フレームを処理する
// JSON の解析失敗や未知の action はフレーム単位で破棄し、
// 接続状態には影響させない。
func (c *Client) handleFrame(payload []byte) {
	var msg models.StreamMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.logger.Warn("Dropped malformed frame",
			zap.Error(err),
		)
		return
	}

	switch msg.Action {
	case models.ActionPointUpdate:
		c.cache.UpsertAll(msg.Data)
		c.logger.Debug("Applied point updates",
			zap.Int("point_count", len(msg.Data)),
		)
	default:
		c.logger.Debug("Ignored frame with unknown action",
			zap.String("action", msg.Action),
		)
	}
}

// teardown 接続ハンドルを破棄して Disconnected に遷移する
// ハンドルをクリアするので、次の Connect は no-op にならない。
func (c *Client) teardown(conn *websocket.Conn) {
	conn.Close()

	c.mu.Lock()
	if c.conn != conn {
		// すでに別の接続に置き換わっている
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.state = StateDisconnected
	onState := c.onState
	c.mu.Unlock()

	if onState != nil {
		onState(false)
	}
}

// Send フレームを JSON で送信する
// 未接続の場合は黙って破棄する（キューイングしない）。
func (c *Client) Send(v any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateConnected || c.conn == nil {
		c.logger.Debug("Dropped outbound frame while disconnected")
		return
	}

	if err := c.conn.WriteJSON(v); err != nil {
		c.logger.Warn("Failed to write frame",
			zap.Error(err),
		)
	}
}

// Close 接続を閉じる
func (c *Client) Close() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}
