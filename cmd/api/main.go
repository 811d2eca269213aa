package main

import (
	"log"

	"menureader/internal/auth"
	"menureader/internal/config"
	"menureader/internal/db"
	"menureader/internal/history"
	"menureader/internal/imagesearch"
	"menureader/internal/kv"
	"menureader/internal/pipeline"
	"menureader/internal/request"
	"menureader/internal/router"
	"menureader/internal/vision"
)

func main() {

	// ───────────────────────── CONFIG ─────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	// ───────────────────────── STORE ─────────────────────────
	var store kv.Store
	var userRepo auth.UserRepository

	if cfg.DatabaseURL != "" {
		pgDB := db.ConnectPostgres()
		defer pgDB.Close()
		store = kv.NewPostgresStore(pgDB)
		userRepo = auth.NewPostgresUserRepository(pgDB)
	} else {
		sqliteStore, err := kv.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			log.Fatal("❌ SQLite init failed:", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
		userRepo = auth.NewInMemoryUserRepository()
		log.Printf("Using embedded store at %s", cfg.SQLitePath)
	}

	// ───────────────────────── CLIENTS ─────────────────────────
	rc := request.NewClient(request.WithTimeout(cfg.RequestTimeout))

	visionClient, err := vision.NewClient(rc, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL)
	if err != nil {
		log.Fatal("❌ Vision client init failed:", err)
	}

	searchClient, err := imagesearch.NewClient(rc, cfg.SearchAPIKey, cfg.SearchCX)
	if err != nil {
		log.Fatal("❌ Image search init failed:", err)
	}

	// ───────────────────────── SERVICES ─────────────────────────
	histManager := history.NewManager(store)

	orchestrator := pipeline.New(
		visionClient,
		searchClient,
		histManager,
		pipeline.WithSearchInterval(cfg.SearchInterval),
	)
	orchestrator.Subscribe(func(ev pipeline.Event) {
		if ev.DishID == "" {
			log.Printf("SCAN_PROGRESS stage=%s progress=%.1f", ev.Stage, ev.Progress)
		}
	})

	// ───────────────────────── HANDLERS ─────────────────────────
	authHandler := auth.NewHandler(auth.NewService(userRepo))
	scanHandler := pipeline.NewHandler(orchestrator)
	historyHandler := history.NewHandler(histManager)

	// ───────────────────────── START ─────────────────────────
	r := router.NewRouter(authHandler, scanHandler, historyHandler)

	log.Printf("🚀 API running at http://localhost:%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
