package main

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"meterdesk/internal/auth"
	"meterdesk/internal/cloud"
	"meterdesk/internal/config"
	"meterdesk/internal/database"
	"meterdesk/internal/domain"
	httpHandlers "meterdesk/internal/http"
	"meterdesk/internal/repository"
	"meterdesk/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := godotenv.Load(); err == nil {
		log.Info().Msg("loaded environment from .env")
	}

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if config.JWTSecret() == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	repos := repository.New(db)
	if err := seedAdmin(repos); err != nil {
		log.Fatal().Err(err).Msg("admin bootstrap failed")
	}

	photos, err := cloud.NewPhotoStore(context.Background(), config.AWSRegion(), config.S3Bucket())
	if err != nil {
		log.Fatal().Err(err).Msg("photo store init failed")
	}

	photoTTL := time.Duration(config.PhotoURLTTLMinutes()) * time.Minute
	svcs := service.New(repos, photos, photoTTL)

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // meter photos
	})

	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	tokenTTL := time.Duration(config.TokenTTLHours()) * time.Hour
	httpHandlers.Register(app, svcs, config.JWTSecret(), tokenTTL)

	addr := config.APIAddr()
	log.Info().Str("addr", addr).Msg("api listening")
	log.Fatal().Err(app.Listen(addr)).Msg("server exit")
}

// seedAdmin creates the protected bootstrap account on first run.
func seedAdmin(repos *repository.Repos) error {
	ctx := context.Background()
	_, err := repos.GetUserByUsername(ctx, "admin")
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	password := config.AdminPassword()
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = repos.InsertUser(ctx, &domain.User{
		Username:     "admin",
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		FullName:     "System Administrator",
		IsActive:     true,
	})
	if err != nil {
		return err
	}
	log.Info().Msg("bootstrap admin account created")
	return nil
}
