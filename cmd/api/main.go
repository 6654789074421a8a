package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/tripmate/tripmate-go/internal/config"
	"github.com/tripmate/tripmate-go/internal/handler"
	"github.com/tripmate/tripmate-go/internal/middleware"
	"github.com/tripmate/tripmate-go/internal/repository"
	"github.com/tripmate/tripmate-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := repository.Migrate(context.Background(), db); err != nil {
		slog.Warn("schema bootstrap failed — continuing with existing schema", "error", err)
	}

	tripRepo := repository.NewTripRepository(db)
	tripService := service.NewTripService(tripRepo)
	tripHandler := handler.NewTripHandler(tripService)

	itineraryService := service.NewItineraryService(repository.NewWaypointRepository(db))
	expenseService := service.NewExpenseService(repository.NewExpenseRepository(db))
	roomHandler := handler.NewRoomHandler(itineraryService, expenseService, slog.Default())

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(10, 20))
		r.Use(middleware.TokenAuth(cfg.TokenSecret))

		r.Get("/api/v1/trips/{trip_id}", tripHandler.HandleGetTrip)
		r.Put("/api/v1/trips/{trip_id}", tripHandler.HandleUpdateTrip)

		r.Get("/ws/detail-trip", roomHandler.HandleDetailTrip)
		r.Get("/ws/expenses", roomHandler.HandleExpenses)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
