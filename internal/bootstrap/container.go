package bootstrap

import (
	"context"
	"log"
	"time"

	"slidesync-be/internal/config"
	"slidesync-be/internal/controller"
	"slidesync-be/internal/handler"
	"slidesync-be/internal/pkg/logger"
	"slidesync-be/internal/repository/contract"
	"slidesync-be/internal/repository/implementation"
	"slidesync-be/internal/service"
	"slidesync-be/internal/state"
	"slidesync-be/internal/websocket"
	"slidesync-be/pkg/blob"
	pktNats "slidesync-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	PresentationController controller.IPresentationController
	SyncHandler            *handler.SyncHandler

	SyncService  service.ISyncService
	WebSocketHub *websocket.Hub
}

// NewContainer wires the application. db may be nil when no playlist store is
// configured; the affected endpoints answer 503 instead of failing at boot.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Broadcast bus: the engine publishes committed envelopes, the hub is the
	// single subscriber. gochannel preserves publish order.
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)

	// NATS mirror (optional)
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		var err error
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		}
	}

	// Redis relay (optional)
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// Core: store -> engine -> hub
	store := state.NewStore()
	syncService := service.NewSyncService(store, pubSub, natsPub, sysLogger)

	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	wsHub := websocket.NewHub(syncService, pubSub, rdb, wsLogger)
	go wsHub.Run(context.Background())

	// Playlist store (optional)
	var deckRepo contract.DeckRepository
	if db != nil {
		deckRepo = implementation.NewDeckRepository(db)
	}

	// Blob stores (both optional)
	var remoteStore blob.Store
	if cfg.Blob.Endpoint != "" && cfg.Blob.APIKey != "" {
		remoteStore = blob.NewRemoteStore(cfg.Blob.Endpoint, cfg.Blob.Bucket, cfg.Blob.APIKey)
	}
	var localStore blob.Store
	if cfg.Blob.UploadDir != "" {
		localStore = blob.NewLocalStore(cfg.Blob.UploadDir)
	}

	presentationService := service.NewPresentationService(
		syncService,
		deckRepo,
		remoteStore,
		localStore,
		cfg.Blob.SlidesDir,
		time.Duration(cfg.Probe.SizeProbeTimeoutSec)*time.Second,
		sysLogger,
	)

	return &Container{
		PresentationController: controller.NewPresentationController(presentationService, syncService, cfg.App.Port),
		SyncHandler:            handler.NewSyncHandler(wsHub, syncService, wsLogger),
		SyncService:            syncService,
		WebSocketHub:           wsHub,
	}
}
