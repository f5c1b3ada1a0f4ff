package main

import (
	"context"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authcleanup "github.com/mzotova/threadline/internal/auth/cleanup"
	authhttp "github.com/mzotova/threadline/internal/auth/http"
	authrepo "github.com/mzotova/threadline/internal/auth/repository"
	authservice "github.com/mzotova/threadline/internal/auth/service"
	"github.com/mzotova/threadline/internal/auth/sessionauth"
	"github.com/mzotova/threadline/internal/chat/generate"
	chathttp "github.com/mzotova/threadline/internal/chat/http"
	chatrepo "github.com/mzotova/threadline/internal/chat/repository"
	chatservice "github.com/mzotova/threadline/internal/chat/service"
	"github.com/mzotova/threadline/internal/chat/ws"
	"github.com/mzotova/threadline/internal/common/config"
	"github.com/mzotova/threadline/internal/common/constants"
	commoncrypto "github.com/mzotova/threadline/internal/common/crypto"
	"github.com/mzotova/threadline/internal/common/db"
	commonhttp "github.com/mzotova/threadline/internal/common/http"
	"github.com/mzotova/threadline/internal/common/logger"
	srv "github.com/mzotova/threadline/internal/common/server"
	userrepo "github.com/mzotova/threadline/internal/user/repository"
	"github.com/mzotova/threadline/migrations"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_DIR"), "threadline", os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := db.RunMigrations(log, cfg.DatabaseURL, migrations.FS); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()
	db.StartPoolMetrics(pool, constants.DBPoolMetricsInterval)

	users := userrepo.NewPgRepository(pool)
	sessions := authrepo.NewPgSessionRepository(pool)
	threads := chatrepo.NewPgThreadRepository(pool)

	auth := authservice.NewAuthService(
		authservice.AuthServiceDeps{
			Repo:        users,
			Sessions:    sessions,
			Hasher:      &commoncrypto.BcryptHasher{},
			IDGenerator: commoncrypto.NewUUIDGenerator(),
			Log:         log,
		},
		authservice.AuthServiceConfig{
			SessionSecret:      cfg.SessionSecret,
			SessionTTL:         cfg.SessionTTL,
			MaxSessionsPerUser: cfg.MaxSessionsPerUser,
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	go authcleanup.StartSessionCleanup(ctx, sessions, log)

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	var generator generate.Generator
	if cfg.OpenAIAPIKey != "" {
		generator = generate.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		log.Infof("generation backend: openai model=%s", cfg.OpenAIModel)
	} else {
		generator = generate.NewStaticGenerator()
		log.Warn("generation backend: static fallback (OPENAI_API_KEY not set)")
	}

	chat := chatservice.NewChatService(chatservice.ChatServiceDeps{
		Repo:      threads,
		Generator: generator,
		Notifier:  hub,
		Log:       log,
	})

	rateLimiter := commonhttp.NewStrictRateLimiter()
	limited := func(path string, h http.Handler) http.Handler {
		return rateLimiter.MiddlewareForPath(path)(h)
	}

	authHandler := authhttp.NewHandler(auth, cfg, log)
	chatHandler := chathttp.NewHandler(chat, cfg, log)
	wsHandler := ws.NewHandler(hub, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/api/register", limited("/api/register", authHandler))
	mux.Handle("/api/login", limited("/api/login", authHandler))
	mux.Handle("/api/logout", limited("/api/logout", authHandler))
	mux.Handle("/api/user", limited("/api/user", authHandler))
	mux.Handle("/api/messages", limited("/api/messages", chatHandler))
	mux.Handle("/api/threads", limited("/api/threads", chatHandler))
	mux.Handle("/api/threads/", limited("/api/threads/", chatHandler))
	mux.Handle("/ws", wsHandler)

	handler := commonhttp.BuildBaseHandler(log, sessionauth.Middleware(auth, log)(mux))

	server := srv.NewServer(srv.DefaultServerConfig(cfg.HTTPPort), handler)

	hooks := []srv.ShutdownHook{
		func(context.Context) error {
			cancel()
			return nil
		},
	}

	srv.StartWithGracefulShutdownAndHooks(server, log, "threadline", hooks)
}
