package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"smart-building-os/internal/alert"
	"smart-building-os/internal/cache"
	"smart-building-os/internal/config"
	"smart-building-os/internal/logger"
	"smart-building-os/internal/repository"
	"smart-building-os/internal/stream"
	"smart-building-os/internal/subscription"
	"smart-building-os/internal/timeseries"
	"smart-building-os/internal/topology"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	// 1. 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. ロガーの初期化
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "dashboard-core")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. アラートイベント永続化（任意）
	var recorder alert.Recorder
	if cfg.Database.Enabled {
		db, err := sql.Open("postgres", cfg.GetDSN())
		if err != nil {
			log.Fatal("Failed to open database", zap.Error(err))
		}
		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database", zap.Error(err))
		}
		defer db.Close()
		recorder = repository.NewAlertEventRepository(db, log)
	}

	// 4. 時系列履歴ストア（任意）
	var history *timeseries.HistoryStore
	if cfg.History.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to ping redis", zap.Error(err))
		}
		defer redisClient.Close()
		history = timeseries.NewHistoryStore(
			redisClient, cfg.History.KeyPrefix, cfg.History.KeySuffix, cfg.History.TTL, log)
	}

	// 5. コアコンポーネントの構築
	liveCache := cache.NewLiveCache(cache.Options{RejectStale: cfg.Cache.RejectStale}, log)

	engine := alert.NewEngine(cfg.Alert.MaxActive, recorder, log)
	for _, alertCfg := range alert.DefaultConfigs() {
		engine.SetConfig(alertCfg)
	}

	topoClient := topology.NewClient(cfg.API.BaseURL, cfg.API.Timeout, cfg.API.Depth, log)
	store := topology.NewStore(topoClient, log)
	store.Load(ctx)

	streamClient := stream.NewClient(cfg.Stream.URL, cfg.Stream.HandshakeTimeout, liveCache, log)
	subs := subscription.NewManager(streamClient, log)

	// 再接続時は現在の購読集合を送り直す
	streamClient.OnStateChange(func(connected bool) {
		if connected {
			subs.Resubscribe()
			return
		}
		log.Warn("Stream is offline; live values are stale until reconnect")
	})

	if err := streamClient.Connect(ctx); err != nil {
		// 自動リトライはしない。接続なしでも UI は静的データで動く。
		log.Warn("Initial stream connect failed", zap.Error(err))
	}
	defer streamClient.Close()

	// 6. 監視対象の選択（最初の部屋の設備を購読）
	buffer := timeseries.NewBuffer(log)
	rooms := store.Rooms()
	if len(rooms) > 0 {
		room := rooms[0]
		equipment := store.EquipmentIn(room.PointID)
		log.Info("Watching room",
			zap.String("room", room.EntityName),
			zap.Int("equipment_count", len(equipment)),
			zap.Bool("demo_fallback", store.Fallback()),
		)

		pointIDs := make([]string, 0, len(equipment))
		for _, eq := range equipment {
			pointIDs = append(pointIDs, eq.PointID)
			window := buffer.Synthesize(eq.PointID)
			if history != nil {
				if err := history.SaveWindow(ctx, eq.PointID, window); err != nil {
					log.Warn("Failed to save history window",
						zap.String("point_id", eq.PointID),
						zap.Error(err),
					)
				}
			}
		}
		subs.SetInterest(pointIDs)

		watcher := alert.NewWatcher(engine, liveCache, cfg.Alert.CheckInterval, log)
		go watcher.Watch(ctx, equipment)
	}

	// 7. シグナル待ち（graceful shutdown）
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info("Received signal, shutting down",
		zap.String("signal", sig.String()),
	)

	subs.Clear()
	cancel()
	log.Info("Dashboard core stopped")
}
