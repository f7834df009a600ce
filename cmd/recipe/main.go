package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Skotchmaster/recipe_api/internal/config"
	"github.com/Skotchmaster/recipe_api/internal/db"
	"github.com/Skotchmaster/recipe_api/internal/events"
	"github.com/Skotchmaster/recipe_api/internal/httpserver"
	"github.com/Skotchmaster/recipe_api/internal/logging"
	"github.com/Skotchmaster/recipe_api/internal/repo"
	"github.com/Skotchmaster/recipe_api/internal/search"
	"github.com/Skotchmaster/recipe_api/internal/service"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err == nil {
		err = db.Migrate(ctx, gdb)
	}
	cancel()
	if err != nil {
		log.Fatalf("db init: %v", err)
	}

	var publisher service.Publisher = service.NoopPublisher{}
	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicPrefix, cfg.ServiceName)
	if producer != nil {
		publisher = producer
		logger.Info("kafka producer enabled", "brokers", cfg.KafkaBrokers)
	}

	r := repo.New(gdb)
	recipes := &service.RecipeService{Repo: r, Events: publisher}
	tags := service.NewTagService(repo.NewTagRepo(gdb))
	ingredients := service.NewIngredientService(repo.NewIngredientRepo(gdb))
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg)
		if err != nil {
			logger.Warn("elasticsearch disabled", "error", err)
		} else {
			idx := search.NewIndex(es, cfg.ESIndex)
			recipes.Index = idx
			tags.Recipes, tags.Index = r, idx
			ingredients.Recipes, ingredients.Index = r, idx
			logger.Info("elasticsearch enabled", "index", cfg.ESIndex)
		}
	}

	e := httpserver.New(logger)
	httpserver.Register(e, &httpserver.Deps{
		DB:          gdb,
		Users:       &service.UserService{Repo: r, Events: publisher},
		Recipes:     recipes,
		Tags:        tags,
		Ingredients: ingredients,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("recipe listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db close error", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
