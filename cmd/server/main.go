package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dumplingtale/internal/achievement"
	"dumplingtale/internal/config"
	"dumplingtale/internal/game"
	"dumplingtale/internal/save"
	"dumplingtale/internal/save/sqlite"
	"dumplingtale/internal/story"
	"dumplingtale/internal/web"

	"github.com/joho/godotenv"
)

func main() {
	log.SetPrefix("dumplingtale: ")
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	content, err := story.LoadContent(cfg.ContentPath)
	if err != nil {
		return err
	}

	var catalog *achievement.Catalog
	if cfg.AchievementsPath != "" {
		c, err := achievement.LoadCatalog(cfg.AchievementsPath)
		if err != nil {
			return err
		}
		catalog = &c
	}

	slot, closeSlot, err := openSlot(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSlot()

	host, err := web.NewHost(game.Options{
		Content:         content,
		Catalog:         catalog,
		Slot:            slot,
		Logger:          log.Default(),
		CharDelay:       cfg.CharDelay(),
		HistoryLimit:    cfg.HistoryLimit,
		MasterThreshold: cfg.MasterThreshold,
	}, cfg.TickInterval())
	if err != nil {
		return err
	}
	go host.Run(ctx)

	srv := &web.Server{Host: host, AssetsDir: cfg.AssetsDir, Logger: log.Default()}
	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("%q loaded (%d chapters), listening on %s", content.Title, len(content.Chapters), cfg.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func openSlot(ctx context.Context, cfg config.Config) (save.Slot, func(), error) {
	if cfg.SaveBackend == config.BackendSQLite {
		s, err := sqlite.Open(ctx, cfg.SavePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				log.Printf("close save db: %v", err)
			}
		}, nil
	}
	return save.NewFileSlot(cfg.SavePath), func() {}, nil
}
