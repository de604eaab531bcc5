package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/sim-replay-client/internal/config"
	"github.com/DoyleJ11/sim-replay-client/internal/httpapi"
	"github.com/DoyleJ11/sim-replay-client/internal/hub"
	"github.com/DoyleJ11/sim-replay-client/internal/ws"

	archivestore "github.com/DoyleJ11/sim-replay-client/internal/archive"
)

// tickInterval is the fixed frame cadence driving the scheduler.
const tickInterval = 33 * time.Millisecond

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := buildLogger(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := ws.Dial(ctx, cfg.ServerURL, logger)
	if err != nil {
		logger.Fatal("dial failed", zap.String("url", cfg.ServerURL), zap.Error(err))
	}
	defer client.Close()

	var archive hub.Archive
	if cfg.ArchiveDSN != "" {
		catalog, err := archivestore.Open(cfg.ArchiveDSN)
		if err != nil {
			logger.Fatal("archive open failed", zap.Error(err))
		}
		archive = catalog
		logger.Info("replay archive enabled")
	}

	h := hub.NewHub(ctx, logger, client, archive)

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: httpapi.SetupRoutes(h)}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.ReadLoop(gctx, h.Inbox())
	})

	g.Go(func() error {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		last := time.Now()
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-ticker.C:
				h.Inbox() <- hub.Tick{DT: now.Sub(last).Milliseconds()}
				last = now
			}
		}
	})

	g.Go(func() error {
		logger.Info("control surface listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("client exited", zap.Error(err))
	}
	logger.Info("done")
}

func buildLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
