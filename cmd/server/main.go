package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/roackb2/snowdream/config"
	"github.com/roackb2/snowdream/internal/app/controllers"
	"github.com/roackb2/snowdream/internal/app/wiring"
	"github.com/roackb2/snowdream/internal/pkg/control_plane"
	"github.com/roackb2/snowdream/internal/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	env := flag.String("env", "dev", "config profile")
	flag.Parse()

	if err := config.LoadConfig(*env); err != nil {
		slog.Error("Error loading configuration", "error", err)
		os.Exit(1)
	}
	closer := logging.Setup(config.Config.Log, os.Stderr)
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := serve(ctx, config.Config); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg config.Configuration) error {
	store, release, err := wiring.OpenStore(ctx, cfg, cfg.Project.Path)
	if err != nil {
		return err
	}
	defer release()
	ps := wiring.NewPubSub(cfg)
	defer ps.Close()

	if cfg.Mode != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	view := control_plane.NewProjectView(cfg.Project.Path, store, nil)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: controllers.NewRouter(view, ps, cfg.Kafka.Topic),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return view.Follow(ctx, ps, cfg.Kafka.Topic)
	})
	g.Go(func() error {
		slog.Info("Server is running", "port", cfg.Server.Port, "project", cfg.Project.Path)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
