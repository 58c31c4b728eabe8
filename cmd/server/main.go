package main

import (
	"context"
	"net/http"
	"os"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"api/config"
	"api/grading"
	"api/migrations"
	"api/raid"
	"api/storage"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(ctx *gin.Context) { ctx.String(http.StatusOK, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if !cfg.SkipMigrations {
		if err := migrations.Migrate(cfg.PostgresURL); err != nil {
			logger.Fatal().Err(err).Msg("migrations failed")
		}
	}

	pgRepo, err := storage.NewPostgresRepo(context.Background(), cfg.PostgresURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pgRepo.Close()

	grader := grading.NewGrader(cfg.OpenAIKey, cfg.OpenAIURL, cfg.GradingModel, cfg.GradingTimeout, logger)

	registry := raid.NewRegistry(
		raid.RoomConfigs{BossHP: cfg.BossHP, TurnTimeout: cfg.TurnTimeout},
		grader,
		pgRepo,
		raid.NewTickerGen(),
		logger,
	)

	registryStarted := make(chan struct{})
	go registry.RegistryActor(registryStarted)
	<-registryStarted

	r := CreateServer(cfg.AllowedOrigins)

	raidHandler := raid.NewRaidHandler(registry, pgRepo, pgRepo, logger)
	raidHandler.RegisterRoute(r)

	logger.Info().Str("addr", cfg.ListenAddr).Msg("raid api listening")
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
