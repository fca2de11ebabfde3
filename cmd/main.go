package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"github.com/nikhil/taskflow/internal/config"
	"github.com/nikhil/taskflow/internal/database"
	"github.com/nikhil/taskflow/internal/hub"
	"github.com/nikhil/taskflow/internal/logger"
	"github.com/nikhil/taskflow/internal/routes"
	"github.com/nikhil/taskflow/internal/service/auth"
	"github.com/nikhil/taskflow/internal/service/invitation"
	"github.com/nikhil/taskflow/internal/service/membership"
	"github.com/nikhil/taskflow/internal/service/notification"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("taskflow", "").Fatal("Failed to load configuration", "error", err)
	}

	log := logger.New("taskflow", cfg.AppEnv)
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()

	if err := database.InitSchema(ctx, db, cfg.DBDriver); err != nil {
		return err
	}
	log.Info("Connected to database", "driver", cfg.DBDriver)

	sessions := hub.New(log.Named("hub"))
	defer sessions.Close()

	members := membership.NewSQLStore(db, log.Named("membership"))
	notifications := notification.NewStore(db)
	router := notification.NewRouter(sessions, log.Named("notification-router"))
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	handler := routes.RegisterAllRoutes(routes.Deps{
		DB:             db,
		Auth:           auth.NewAuthService(members, tokens, log.Named("auth")),
		Tokens:         tokens,
		Members:        members,
		Coordinator:    invitation.NewCoordinator(db, members, notifications, router, log.Named("invitation")),
		Notifications:  notifications,
		Hub:            sessions,
		Log:            log,
		RequestTimeout: cfg.RequestTimeout,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server is running", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
