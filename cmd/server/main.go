package main

import (
	"context"
	"fmt"
	"log"

	"slidesync-be/internal/bootstrap"
	"slidesync-be/internal/config"
	"slidesync-be/internal/server"
	"slidesync-be/internal/tracer"
	"slidesync-be/pkg/database"

	"github.com/fatih/color"
	"gorm.io/gorm"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Playlist store is optional: without a DSN the playlist endpoints
	// answer "not configured" instead of blocking startup.
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		var err error
		gormDB, err = database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
	} else {
		log.Println("[WARN] DB_CONNECTION_STRING not set; playlist endpoints disabled")
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	printBanner(cfg)

	// 4. Run Server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}

func printBanner(cfg *config.Config) {
	title := color.New(color.FgCyan, color.Bold)
	route := color.New(color.FgGreen)

	fmt.Println()
	title.Println("===========================================")
	title.Println("   SlideSync - PDF Presentation Server")
	title.Println("===========================================")
	fmt.Println()
	route.Printf("   State:     http://localhost:%s/api/state\n", cfg.App.Port)
	route.Printf("   Playlist:  http://localhost:%s/api/playlist\n", cfg.App.Port)
	route.Printf("   Realtime:  ws://localhost:%s/ws\n", cfg.App.Port)
	fmt.Println()
}
