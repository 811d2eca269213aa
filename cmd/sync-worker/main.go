package main

import (
	"context"
	"log"
	"os"
	"time"

	"menureader/internal/config"
	"menureader/internal/db"
	"menureader/internal/history"
	"menureader/internal/kv"
	"menureader/internal/storage"
	"menureader/internal/uploadsync"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Note: No .env file found, using environment variables")
	}

	log.Println("📤 Sync worker starting...")

	if err := config.RequireR2(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	// Same store the API writes through
	var store kv.Store
	if os.Getenv("DATABASE_URL") != "" {
		pgDB := db.ConnectPostgres()
		defer pgDB.Close()
		store = kv.NewPostgresStore(pgDB)
	} else {
		sqliteStore, err := kv.NewSQLiteStore(getSQLitePath())
		if err != nil {
			log.Fatal("❌ SQLite init failed:", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
	}

	r2Client, err := storage.NewR2Client(context.Background())
	if err != nil {
		log.Fatal("❌ R2 init failed:", err)
	}

	service := uploadsync.NewService(history.NewManager(store), r2Client)

	log.Println("✅ Sync worker initialized and running...")
	log.Println("Flushing pending uploads every 5 seconds. Press Ctrl+C to stop.")

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if err := service.ProcessOne(context.Background()); err != nil {
			log.Printf("⚠️  Sync error: %v", err)
		}
	}
}

func getSQLitePath() string {
	if p := os.Getenv("SQLITE_PATH"); p != "" {
		return p
	}
	return "menureader.db"
}
