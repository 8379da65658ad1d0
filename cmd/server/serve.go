package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/and161185/inkwell/internal/config"
	"github.com/and161185/inkwell/internal/crypto"
	"github.com/and161185/inkwell/internal/limiter"
	"github.com/and161185/inkwell/internal/logger"
	"github.com/and161185/inkwell/internal/migrate"
	"github.com/and161185/inkwell/internal/notify"
	"github.com/and161185/inkwell/internal/repository/postgres"
	"github.com/and161185/inkwell/internal/server/httpapi"
	"github.com/and161185/inkwell/internal/service"
	"github.com/and161185/inkwell/internal/storage"
	"github.com/and161185/inkwell/internal/token"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and start the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		log, err := logger.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// serve wires every component and blocks until ctx is cancelled or the listener fails.
func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	log.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.HTTPAddr),
	)

	if err := migrate.Up(ctx, cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}

	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	users := postgres.NewUserRepo(db)
	refreshRepo := postgres.NewRefreshTokenRepo(db)
	articles := postgres.NewArticleRepo(db)

	policy := limiter.Policy{Window: cfg.LoginWindow, MaxFails: cfg.LoginMaxFails, BlockFor: cfg.LoginBlock}
	var lim limiter.Limiter = limiter.NewPG(db.Pool, policy)
	if cfg.RedisAddr != "" {
		rdb, err := limiter.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		lim = limiter.NewRedis(rdb, "", policy)
		log.Info("login limiter: redis", zap.String("addr", cfg.RedisAddr))
	}

	codec, err := token.NewCodec(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		return err
	}
	store := service.NewRefreshTokenStore(refreshRepo, cfg.RefreshTokenTTL, log)
	authSvc := service.NewAuthService(users, crypto.NewHasher(cfg.BcryptCost), codec, store, lim, log)
	gate := service.NewGate(codec, users, log)

	hub := notify.NewHub(log)
	go hub.Run(ctx)
	notifiers := []service.Notifier{hub}
	if cfg.AMQPURL != "" {
		pub, err := notify.DialAMQP(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			return err
		}
		defer func() { _ = pub.Close() }()
		notifiers = append(notifiers, pub)
		log.Info("notifications mirrored to amqp", zap.String("queue", cfg.AMQPQueue))
	}
	notes := service.NewNotificationService(postgres.NewNotificationRepo(db), log, notifiers...)

	deps := httpapi.Deps{
		Auth:          authSvc,
		Users:         service.NewUserService(users, store, log),
		Articles:      service.NewArticleService(articles, log),
		Comments:      service.NewCommentService(postgres.NewCommentRepo(db), articles, notes, log),
		Likes:         service.NewLikeService(postgres.NewLikeRepo(db), articles, notes, log),
		Notifications: notes,
		Gate:          gate,
		Hub:           hub,
		MaxUpload:     cfg.MediaMaxBytes,
		Log:           log,
	}
	if cfg.Minio.Endpoint != "" {
		objects, err := storage.NewMinio(cfg.Minio)
		if err != nil {
			return err
		}
		if err := objects.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("ensure bucket %s: %w", objects.Bucket(), err)
		}
		deps.Media = service.NewMediaService(objects, cfg.MediaMaxBytes, log)
	}

	go service.RunSweeper(ctx, store, cfg.PurgeInterval, log)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.New(deps).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("graceful shutdown timed out", zap.Error(err))
			_ = srv.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	}

	log.Info("shutdown complete")
	return nil
}
