package config

import (
	"fmt"
	"os"
	"time"
)

// Config ダッシュボードコアの設定
type Config struct {
	// トポロジ取得 API
	API struct {
		BaseURL string        // 例 "https://api.example.com/v1"
		Timeout time.Duration // リクエストタイムアウト
		Depth   string        // トポロジ取得の探索深さ（デフォルト "Equipment"）
	}

	// ライブデータ用 WebSocket
	Stream struct {
		URL              string        // 例 "wss://stream.example.com/live"
		HandshakeTimeout time.Duration
	}

	// アラート評価
	Alert struct {
		CheckInterval time.Duration // しきい値評価の周期（デフォルト 10秒）
		MaxActive     int           // アクティブアラートの上限（デフォルト 50）
	}

	// ライブ値キャッシュ
	Cache struct {
		RejectStale bool // 古いタイムスタンプの値を破棄するか（デフォルト false）
	}

	// 時系列履歴（Redis、任意）
	History struct {
		Enabled   bool
		KeyPrefix string // 履歴キャッシュキー前缀（デフォルト "dashboard:point:"）
		KeySuffix string // デフォルト ":history"
		TTL       int    // 秒
	}

	// アラートイベント永続化（PostgreSQL、任意）
	Database struct {
		Enabled  bool
		Host     string
		Port     int
		User     string
		Password string
		Database string
		SSLMode  string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 環境変数から設定を読み込む
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.API.BaseURL = getEnv("API_REST_URL", "http://localhost:8080")
	cfg.API.Timeout = getEnvDuration("API_TIMEOUT", 15*time.Second)
	cfg.API.Depth = getEnv("API_TOPOLOGY_DEPTH", "Equipment")

	cfg.Stream.URL = getEnv("API_WS_URL", "ws://localhost:8080/live")
	cfg.Stream.HandshakeTimeout = getEnvDuration("WS_HANDSHAKE_TIMEOUT", 10*time.Second)

	cfg.Alert.CheckInterval = getEnvDuration("ALERT_CHECK_INTERVAL", 10*time.Second)
	cfg.Alert.MaxActive = 50

	cfg.Cache.RejectStale = getEnv("CACHE_REJECT_STALE", "false") == "true"

	cfg.History.Enabled = getEnv("HISTORY_ENABLED", "false") == "true"
	cfg.History.KeyPrefix = getEnv("HISTORY_KEY_PREFIX", "dashboard:point:")
	cfg.History.KeySuffix = ":history"
	cfg.History.TTL = 86400 // 24時間

	cfg.Database.Enabled = getEnv("DB_ENABLED", "false") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = 5432
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "dashboard")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

// GetDSN PostgreSQL 接続文字列を返す
func (c *Config) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.Database, c.Database.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
