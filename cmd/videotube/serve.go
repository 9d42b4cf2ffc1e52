package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/videotube-app/videotube/internal/api"
	"github.com/videotube-app/videotube/internal/auth"
	"github.com/videotube-app/videotube/internal/config"
	"github.com/videotube-app/videotube/internal/logx"
	"github.com/videotube-app/videotube/internal/store"
	"github.com/videotube-app/videotube/internal/upload"
)

func newServeCommand(configFile *string) *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Apply migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.New(), *configFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, !skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply migrations on start")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, runMigrations bool) error {
	log := logx.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool, err := store.NewPool(ctx, cfg.DBDSN, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	if runMigrations {
		if err := migrate(ctx, pool, log); err != nil {
			return err
		}
	}

	uploads, err := upload.New(cfg.UploadProvider, cfg.UploadBaseURL)
	if err != nil {
		return err
	}
	if _, ok := uploads.(upload.Disabled); ok {
		log.Warn("upload.provider is disabled; studio video creation will return 503")
	}

	users := store.NewPostgresUserRepo(pool)
	var webhooks auth.WebhookVerifier = auth.SharedSecretVerifier{Secret: cfg.WebhookSecret}
	if cfg.WebhookSecret == "" {
		log.Warn("auth.webhook_secret is empty; identity webhooks will be rejected")
	}

	router := api.NewRouter(api.Deps{
		Users:      users,
		Categories: users,
		Videos:     store.NewPostgresVideoRepo(pool),
		Comments:   store.NewPostgresCommentRepo(pool),
		Playlists:  store.NewPostgresPlaylistRepo(pool),
		Engagement: store.NewPostgresEngagementRepo(pool),
		Uploads:    uploads,
		Resolver:   auth.HeaderResolver{Header: cfg.AuthHeader},
		Webhooks:   webhooks,
		DB:         pool,
		Log:        log,
	}, cfg)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("videotube listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}
	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
