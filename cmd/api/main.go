package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"flowintake/api/internal/app"
	"flowintake/api/internal/config"
	"flowintake/api/internal/notify"
	"flowintake/api/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	dataStore := store.NewPostgresStore(db)

	var notifyService *notify.Service
	if strings.TrimSpace(cfg.SlackBotToken) != "" {
		notifyService = notify.New(cfg.SlackBotToken, notify.Config{
			ChannelID:       cfg.SlackChannelID,
			DefaultMemberID: cfg.SlackDefaultMemberID,
		})
		if strings.TrimSpace(cfg.RedisURL) != "" {
			log.Printf("Using Redis for directory lookup caching")
			cache, err := notify.NewRedisCache(cfg.RedisURL)
			if err != nil {
				log.Fatalf("redis connection failed: %v", err)
			}
			defer cache.Close()
			notifyService = notifyService.WithCache(cache)
		}
	} else {
		log.Printf("SLACK_BOT_TOKEN not set, notifications disabled")
	}

	var service *app.Service
	if notifyService != nil {
		service = app.New(cfg, dataStore, notifyService)
	} else {
		service = app.New(cfg, dataStore, nil)
	}

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Flowintake API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
