package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"birdieo-service/internal/config"
	"birdieo-service/internal/db"
	httphandler "birdieo-service/internal/http"
	"birdieo-service/internal/repository"
	"birdieo-service/internal/service"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	database, err := db.Open(cfg.DB.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	userRepo := repository.NewUserRepository(database)
	roundRepo := repository.NewRoundRepository(database)
	visionRepo := repository.NewVisionRepository(database)

	authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	roundService := service.NewRoundService(roundRepo, log)
	visionService := service.NewVisionService(visionRepo, roundRepo, userRepo, log)

	handler := httphandler.NewHandler(authService, roundService, visionService, cfg, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	handler.Register(r, httphandler.NewAuthMiddleware(authService))

	log.Info().Str("port", cfg.HTTP.Port).Msg("starting server")
	if err := r.Run(":" + cfg.HTTP.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
