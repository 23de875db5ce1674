package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/fantasyarena/backend/internal/api"
	"github.com/fantasyarena/backend/internal/config"
	"github.com/fantasyarena/backend/internal/database"
	"github.com/fantasyarena/backend/internal/migrations"
	appredis "github.com/fantasyarena/backend/internal/redis"
	"github.com/fantasyarena/backend/internal/ws"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[SERVER] failed to connect to database: %v", err)
	}
	defer db.Close()

	if os.Getenv("MIGRATE_ON_START") == "true" {
		if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("[SERVER] migrations failed: %v", err)
		}
	}

	rdb, err := appredis.Connect(cfg.RedisURL)
	if err != nil {
		log.Fatalf("[SERVER] failed to connect to redis: %v", err)
	}
	defer rdb.Close()

	ws.SetRedisClient(rdb)
	ws.StartLobbySubscriber(context.Background())

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	api.SetupRoutes(router, db, rdb, cfg)

	log.Printf("[SERVER] listening on :%s (%s)", cfg.Port, cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("[SERVER] server exited: %v", err)
	}
}
