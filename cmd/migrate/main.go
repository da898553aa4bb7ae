package main

import (
	"log"
	"os"

	"slidesync-be/internal/entity"
	"slidesync-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM migration...")

	// 3. Extensions GORM AutoMigrate does not manage
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Printf("Warn: Failed to create pgcrypto extension: %v. Continuing...", err)
	}

	// 4. AutoMigrate the playlist schema
	if err := db.AutoMigrate(&entity.Deck{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Playlist listings sort newest-first
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_decks_created_at ON decks (created_at DESC);`).Error; err != nil {
		log.Printf("Warn: Failed to create created_at index: %v", err)
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
