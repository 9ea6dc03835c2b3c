package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jengzang/trakxmap-backend-go/internal/api"
	"github.com/jengzang/trakxmap-backend-go/internal/config"
	"github.com/jengzang/trakxmap-backend-go/internal/database"
	"github.com/jengzang/trakxmap-backend-go/internal/loader"
	"github.com/jengzang/trakxmap-backend-go/internal/repository"
	"github.com/jengzang/trakxmap-backend-go/internal/service"
)

func main() {
	cfg := config.Load()

	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	trackService := service.NewTrackService(
		repository.NewTrackRepository(database.GetDB()),
		loader.NewChain(loader.Options{Zone: cfg.TimeZone}),
		cfg.LoadWorkers,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := trackService.LoadStored(ctx); err != nil {
		log.Fatal("Failed to load tracks:", err)
	}

	stop := make(chan struct{})
	defer close(stop)

	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: api.SetupRouter(cfg, trackService, stop),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
			return
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
