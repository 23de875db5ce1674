package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/fantasyarena/backend/internal/api/handlers"
	"github.com/fantasyarena/backend/internal/config"
	"github.com/fantasyarena/backend/internal/middleware"
	"github.com/fantasyarena/backend/internal/payout"
	"github.com/fantasyarena/backend/internal/store"
	"github.com/fantasyarena/backend/internal/tournament"
	"github.com/fantasyarena/backend/internal/wallet"
	"github.com/fantasyarena/backend/internal/ws"
)

// SetupRoutes wires the HTTP surface: services over the SQL store, player
// routes behind auth and ban checks, admin routes behind the admin check.
func SetupRoutes(router *gin.Engine, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	st := store.New(db)
	walletSvc := wallet.NewService(st)
	payoutSvc := payout.NewService(st, cfg.MinWithdrawalAmount)
	tournamentSvc := tournament.NewService(st, ws.Notifier{})

	router.GET("/health", handlers.HealthCheck(db, rdb))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/register", handlers.Register(db, cfg))
		v1.POST("/auth/login", handlers.Login(db, rdb, cfg))

		authed := v1.Group("")
		authed.Use(handlers.AuthMiddleware(rdb, cfg))
		{
			authed.POST("/auth/logout", handlers.Logout(rdb, cfg))
			authed.GET("/auth/me", handlers.CurrentUser(db))

			player := authed.Group("")
			player.Use(handlers.CheckBanStatus(db))
			{
				player.GET("/tournaments", handlers.ListTournaments(db))
				player.GET("/tournaments/:id", handlers.GetTournament(db))
				player.GET("/tournaments/:id/participants", handlers.GetParticipants(db))
				player.GET("/tournaments/:id/teams", handlers.GetTeams(db))
				player.POST("/tournaments/:id/register", handlers.RegisterTournament(tournamentSvc))

				player.POST("/wallet/deposit", handlers.Deposit(walletSvc, cfg))
				player.GET("/wallet/transactions", handlers.GetTransactions(walletSvc))
				player.POST("/wallet/withdraw", handlers.RequestWithdrawal(payoutSvc))
			}

			adminGroup := authed.Group("/admin")
			adminGroup.Use(handlers.AdminMiddleware(db))
			{
				adminGroup.GET("/stats", handlers.GetAdminStats(db))
				adminGroup.GET("/users", handlers.GetAdminUsers(db))
				adminGroup.POST("/users/ban", handlers.BanUser(db))
				adminGroup.POST("/users/unban", handlers.UnbanUser(db))

				adminGroup.POST("/tournaments", handlers.CreateTournament(db))
				adminGroup.PATCH("/tournaments/:id/status", handlers.UpdateTournamentStatus(db))
				adminGroup.POST("/tournaments/:id/award", handlers.AwardPrize(walletSvc, db))

				adminGroup.GET("/payouts", handlers.GetPayoutRequests(db))
				adminGroup.POST("/payouts/process", handlers.ProcessPayout(payoutSvc, db))

				adminGroup.GET("/audit", handlers.GetAuditLog(db))
			}
		}
	}

	// Lobby websocket authenticates through the token query parameter since
	// browsers cannot set headers on websocket upgrades.
	wsGroup := router.Group("/ws")
	wsGroup.Use(middleware.WebSocketCORSCheck(cfg), handlers.AuthMiddleware(rdb, cfg))
	{
		wsGroup.GET("/lobby/:id", ws.HandleLobbyWebSocket())
	}
}
