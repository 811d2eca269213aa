package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"menureader/internal/auth"
	"menureader/internal/history"
	"menureader/internal/middleware"
	"menureader/internal/pipeline"
)

func NewRouter(
	authHandler *auth.Handler,
	scanHandler *pipeline.Handler,
	historyHandler *history.Handler,
) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// ───────────────────────── AUTH ─────────────────────────
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// ───────────────────────── SCANS ─────────────────────────
	scans := r.Group("/scans")
	scans.Use(middleware.AuthMiddleware())
	{
		scans.POST("", scanHandler.Analyze)
		scans.GET("/status", scanHandler.GetStatus)
		scans.GET("/images", scanHandler.GetImages)
	}

	// ───────────────────────── HISTORY ─────────────────────────
	hist := r.Group("/history")
	hist.Use(middleware.AuthMiddleware())
	{
		hist.GET("", historyHandler.List)
		hist.POST("/:id/favorite", historyHandler.ToggleFavorite)
		hist.DELETE("/:id", historyHandler.Delete)
	}

	// ───────────────────────── ADMIN ─────────────────────────
	admin := r.Group("/admin")
	admin.Use(
		middleware.AuthMiddleware(),
		middleware.RequireRole(auth.RoleAdmin),
	)
	{
		admin.GET("/storage/stats", historyHandler.Stats)
		admin.POST("/storage/quota", historyHandler.SetQuota)
	}

	// ───────────────────────── HEALTH ─────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
