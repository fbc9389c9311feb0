package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	echoapi "github.com/socialkit-dev/identity/api/echo"
	"github.com/socialkit-dev/identity/config"
	"github.com/socialkit-dev/identity/internal/auth"
	"github.com/socialkit-dev/identity/internal/linkflow"
	"github.com/socialkit-dev/identity/internal/provider"
	"github.com/socialkit-dev/identity/internal/realtime"
	"github.com/socialkit-dev/identity/mail"
	"github.com/socialkit-dev/identity/mongodb"
	"github.com/socialkit-dev/identity/payment"
	"github.com/socialkit-dev/identity/services"
)

// defaultCatalog is the purchasable product set. Amounts are in paise.
var defaultCatalog = []payment.Product{
	{ID: "pro-monthly", Name: "Pro Monthly", Amount: 49900, Currency: "INR"},
	{ID: "pro-yearly", Name: "Pro Yearly", Amount: 499900, Currency: "INR"},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()
	client, db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("MongoDB disconnect failed")
		}
	}()

	// Repositories
	userRepo, err := mongodb.NewUserRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize user repository")
	}
	profileRepo := mongodb.NewProfileRepository(db)
	refreshRepo, err := mongodb.NewRefreshTokenRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize refresh token repository")
	}
	linkRepo, err := mongodb.NewSocialLinkRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize social link repository")
	}
	orderRepo, err := mongodb.NewOrderRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize order repository")
	}

	// Pending-link store: Redis when configured, in-process otherwise.
	var flows linkflow.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
		}
		flows = linkflow.NewRedisStore(rdb, "identity", linkflow.DefaultTTL)
		log.Info().Str("addr", cfg.RedisAddr).Msg("Using Redis pending-link store")
	} else {
		memStore := linkflow.NewMemoryStore(linkflow.DefaultTTL)
		defer memStore.Stop()
		flows = memStore
		log.Info().Msg("Using in-memory pending-link store")
	}

	// Services
	hasher := auth.NewBcryptPasswordHasher(bcrypt.DefaultCost)
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTRefreshSecret)

	var mailer services.Mailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(mail.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	} else {
		log.Warn().Msg("SMTP_HOST not set, welcome mail disabled")
	}

	authSvc := services.NewAuthService(userRepo, profileRepo, refreshRepo, hasher, tokens, mailer)
	userSvc := services.NewUserService(userRepo, profileRepo, linkRepo)
	linkSvc := services.NewLinkService(userRepo, linkRepo, flows, cfg.ClientBaseURL)
	registerProviders(linkSvc, cfg)

	paySvc := payment.NewService(orderRepo, userRepo, defaultCatalog)
	if cfg.RazorpayKeyID != "" {
		paySvc.RegisterGateway(payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret))
	}
	if cfg.CashfreeClientID != "" {
		paySvc.RegisterGateway(payment.NewCashfreeGateway(cfg.CashfreeClientID, cfg.CashfreeClientSecret))
	}

	// HTTP
	api := echoapi.NewIdentityAPI(authSvc, userSvc, linkSvc, paySvc, realtime.NewHub(), echoapi.WebhookSecrets{
		Razorpay: cfg.RazorpayWebhookSecret,
		Cashfree: cfg.CashfreeWebhookSecret,
	})

	e := echo.New()
	e.HideBanner = true
	api.RegisterRoutes(e)

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("Starting identity server")
		if err := e.Start(":" + cfg.HTTPPort); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	log.Info().Msg("Server stopped")
}

func setupLogger(cfg *config.ServerConfig) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// registerProviders wires every social provider that has credentials
// configured. Unconfigured providers simply 404 at the API.
func registerProviders(links *services.LinkService, cfg *config.ServerConfig) {
	if cfg.GoogleClientID != "" {
		links.RegisterOAuth2Provider(provider.NewGoogleProvider(provider.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			CallbackURL:  cfg.GoogleCallbackURL,
		}))
	}
	if cfg.FacebookClientID != "" {
		links.RegisterOAuth2Provider(provider.NewFacebookProvider(provider.Config{
			ClientID:     cfg.FacebookClientID,
			ClientSecret: cfg.FacebookClientSecret,
			CallbackURL:  cfg.FacebookCallbackURL,
		}))
	}
	if cfg.LinkedInClientID != "" {
		links.RegisterOAuth2Provider(provider.NewLinkedInProvider(provider.Config{
			ClientID:     cfg.LinkedInClientID,
			ClientSecret: cfg.LinkedInClientSecret,
			CallbackURL:  cfg.LinkedInCallbackURL,
		}))
	}
	if cfg.InstagramClientID != "" {
		links.RegisterOAuth2Provider(provider.NewInstagramProvider(provider.Config{
			ClientID:     cfg.InstagramClientID,
			ClientSecret: cfg.InstagramClientSecret,
			CallbackURL:  cfg.InstagramCallbackURL,
		}))
	}
	if cfg.TwitterConsumerKey != "" {
		links.RegisterOAuth1Provider(provider.NewTwitterProvider(provider.Config{
			ClientID:     cfg.TwitterConsumerKey,
			ClientSecret: cfg.TwitterConsumerSecret,
			CallbackURL:  cfg.TwitterCallbackURL,
		}))
	}
}
