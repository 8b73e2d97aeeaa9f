package cmd

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/srgchrksv/bitecast/handlers"
	"github.com/srgchrksv/bitecast/routes"
	"github.com/srgchrksv/bitecast/storage"
)

const historyTTL = 30 * 24 * time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web app",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg, log, err := setup()
	if log != nil {
		defer log.Sync()
	}
	if err != nil {
		return err
	}

	svc, cleanup, err := buildServices(ctx, cfg, log)
	defer cleanup()
	if err != nil {
		return err
	}

	var history storage.HistoryStore
	if cfg.RedisURL != "" {
		redisHistory, err := storage.NewRedisHistory(ctx, cfg.RedisURL, historyTTL)
		if err != nil {
			log.Warn("Redis unavailable, keeping session history in memory", "error", err)
		} else {
			defer redisHistory.Close()
			history = redisHistory
			log.Info("Session history stored in Redis")
		}
	}
	store := storage.NewStorage(history, log)
	if err := store.Folders.Rebuild(cfg.PlaylistDir); err != nil {
		log.Warn("Could not scan playlist directory", "dir", cfg.PlaylistDir, "error", err)
	}

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	h := handlers.NewHandler(svc, store, log, cfg.SpeechToText)
	if err := routes.RegisterRoutes(r, cfg, h, log); err != nil {
		return err
	}

	log.Info("Starting server", "port", cfg.Port, "playlist_dir", cfg.PlaylistDir)
	return r.Run(":" + cfg.Port)
}
