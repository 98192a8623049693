package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/tendant/chi-demo/app"

	"github.com/quickcart/device-authz/pkg/config"
	"github.com/quickcart/device-authz/pkg/customer"
	"github.com/quickcart/device-authz/pkg/deviceauthz"
	"github.com/quickcart/device-authz/pkg/deviceauthz/api"
	"github.com/quickcart/device-authz/pkg/notice"
	"github.com/quickcart/device-authz/pkg/ratelimit"
	"github.com/quickcart/device-authz/pkg/sessions"
	"github.com/quickcart/device-authz/pkg/tokengen"
)

type Config struct {
	DbConfig        config.DatabaseConfig
	EmailConfig     config.EmailConfig
	AuthorizeConfig config.AuthorizeConfig
	AppConfig       app.AppConfig
}

// authorizePrefix is where the verification routes are mounted. The
// endpoint rate limits key off the full request path, so they carry it.
const authorizePrefix = "/account/authorize"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	loadEnvFile()

	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	server := app.DefaultApp()
	app.RegisterHealthzRoutes(server.R)

	rateLimitMiddleware := createRateLimitMiddleware(config.NewRateLimitConfigFromEnv(), authorizePrefix)
	server.R.Use(rateLimitMiddleware.Handler)

	dbURL := cfg.DbConfig.ToDatabaseURL()
	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", cfg.DbConfig.Database, "host", cfg.DbConfig.Host, "port", cfg.DbConfig.Port, "user", cfg.DbConfig.User)
		os.Exit(-1)
	}

	authzRepo := deviceauthz.NewPostgresAuthorizationRepository(pool)
	customerRepo := customer.NewPostgresCustomerRepository(pool)
	sessionStore := sessions.NewPostgresSessionStoreWithTTL(pool, cfg.AuthorizeConfig.SessionTTL())
	go sweepExpiredSessions(sessionStore, cfg.AuthorizeConfig.SessionTTL())

	notificationManager, err := notice.NewNotificationManager(cfg.EmailConfig.ToSMTPConfig())
	if err != nil {
		slog.Error("Failed creating notification manager", "error", err)
		os.Exit(-1)
	}

	authzService := deviceauthz.NewAuthorizationService(
		authzRepo,
		customerRepo,
		sessionStore,
		notificationManager,
		cfg.AuthorizeConfig.BaseURL,
		deviceauthz.WithTrustTTLDays(cfg.AuthorizeConfig.TrustTTLDays),
		deviceauthz.WithCodeLength(cfg.AuthorizeConfig.CodeLength),
	)

	cookieSetter := tokengen.NewCookieSetter(true, cfg.AuthorizeConfig.CookieSecure)
	handle := api.NewHandle(authzService, cookieSetter)

	server.R.Mount(authorizePrefix, api.Routes(handle, []byte(cfg.AuthorizeConfig.SessionSecret), rateLimitMiddleware.CustomerHandler))

	slog.Info("Device authorization service configured",
		"base_url", cfg.AuthorizeConfig.BaseURL,
		"trust_ttl_days", cfg.AuthorizeConfig.TrustTTLDays,
		"session_ttl", cfg.AuthorizeConfig.SessionTTL().Round(time.Minute))

	server.Run()
}

// createRateLimitMiddleware builds the rate limiter from env-driven
// config. Endpoint limits are keyed on the mounted paths so they match
// incoming requests at the server root.
func createRateLimitMiddleware(cfg config.RateLimitConfig, prefix string) *ratelimit.Middleware {
	rlCfg := &ratelimit.Config{
		PerIPEnabled:    cfg.PerIPEnabled,
		PerIPCapacity:   cfg.PerIPCapacity,
		PerIPRefillRate: cfg.PerIPRefillRate,

		PerCustomerEnabled:    cfg.PerCustomerEnabled,
		PerCustomerCapacity:   cfg.PerCustomerCapacity,
		PerCustomerRefillRate: cfg.PerCustomerRefillRate,

		BucketTTL:      time.Hour,
		EndpointLimits: make(map[string]ratelimit.EndpointLimit),
	}

	if cfg.SaveEnabled {
		rlCfg.EndpointLimits["POST "+prefix+"/save"] = ratelimit.EndpointLimit{
			Capacity:   cfg.SaveCapacity,
			RefillRate: cfg.SaveRefillRate,
		}
	}
	if cfg.SendEnabled {
		rlCfg.EndpointLimits["POST "+prefix+"/send"] = ratelimit.EndpointLimit{
			Capacity:   cfg.SendCapacity,
			RefillRate: cfg.SendRefillRate,
		}
	}
	if cfg.ConfirmEnabled {
		rlCfg.EndpointLimits["POST "+prefix+"/confirm"] = ratelimit.EndpointLimit{
			Capacity:   cfg.ConfirmCapacity,
			RefillRate: cfg.ConfirmRefillRate,
		}
	}

	return ratelimit.NewMiddleware(rlCfg)
}

// sweepExpiredSessions periodically clears expired sessions
func sweepExpiredSessions(store *sessions.PostgresSessionStore, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		deleted, err := store.DeleteExpired(context.Background())
		if err != nil {
			slog.Error("Failed deleting expired sessions", "error", err)
			continue
		}
		if deleted > 0 {
			slog.Info("Expired sessions deleted", "count", deleted)
		}
	}
}

// loadEnvFile loads environment variables from .env file if it exists
func loadEnvFile() {
	execPath, err := os.Executable()
	if err != nil {
		return
	}

	execDir := filepath.Dir(execPath)
	envFile := filepath.Join(execDir, ".env")

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		cwd, _ := os.Getwd()
		envFile = filepath.Join(cwd, ".env")
	}

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		slog.Debug("No .env file found (using environment variables or defaults)")
		return
	}

	slog.Info("Loading configuration from .env file", "path", envFile)
	if err := godotenv.Load(envFile); err != nil {
		slog.Warn("Failed to load .env file", "error", err)
	}
}
