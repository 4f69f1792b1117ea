package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/qboard/internal/config"
	"github.com/qboard/internal/db"
	"github.com/qboard/internal/handler"
	"github.com/qboard/internal/log"
	"github.com/qboard/internal/notify"
	"github.com/qboard/internal/permission"
	"github.com/qboard/internal/router"
	"github.com/qboard/internal/service"
	"go.uber.org/zap"
)

func main() {
	// Missing .env is fine, the environment wins anyway.
	_ = godotenv.Load()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	if err := db.Init(cfg.DatabasePath); err != nil {
		log.L.Fatal("failed to initialize database", zap.Error(err))
	}

	policy := permission.DefaultPolicy(cfg.PermissionEntityRefs)
	notifier := notify.NewDispatcher(notify.NewLogTransport(log.L), cfg.NotifyTimeout, log.L)
	api := handler.NewAPI(db.DB, policy, notifier, log.L)

	go runStatsRollup(cfg)

	r := router.Setup(api, cfg.SessionSecret)
	log.L.Info("server starting", zap.String("addr", cfg.ListenAddr))
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.L.Fatal("failed to run server", zap.Error(err))
	}
}

// runStatsRollup periodically writes the daily rollup rows and prunes
// anything past retention. The job is idempotent per calendar day, so the
// interval only controls freshness.
func runStatsRollup(cfg config.AppConfig) {
	stats := service.NewStatsService(db.DB)

	run := func() {
		now := time.Now()
		if err := stats.SaveGlobalStats(now); err != nil {
			log.L.Error("global stats rollup failed", zap.Error(err))
		}

		users, err := stats.ActiveUsers()
		if err != nil {
			log.L.Error("listing active users failed", zap.Error(err))
			return
		}
		for _, user := range users {
			summary, err := stats.UserSummary(user)
			if err != nil {
				log.L.Error("user summary failed", zap.String("user", user), zap.Error(err))
				continue
			}
			if err := stats.SaveUserStats(summary, now); err != nil {
				log.L.Error("user stats rollup failed", zap.String("user", user), zap.Error(err))
			}
		}

		if err := stats.CleanStats(cfg.StatsRetentionDays, now); err != nil {
			log.L.Error("stats cleanup failed", zap.Error(err))
		}
	}

	run()
	ticker := time.NewTicker(cfg.StatsInterval)
	defer ticker.Stop()
	for range ticker.C {
		run()
	}
}
