package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tastemate/cmd/app"
	"tastemate/internal/config"
	handlers "tastemate/internal/handler"
)

func main() {
	// setting up config
	cfg := config.LoadConfig()

	if cfg.SessionSecretKey == "" {
		log.Fatal("SESSION_SECRET_KEY is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, services, err := app.App(ctx, cfg)
	if err != nil {
		log.Fatalf("Startup failed: %v", err)
	}
	defer db.CloseDB()

	handler, err := handlers.NewHandlers(services, cfg)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           app.Router(handler, services, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	// Starting the server
	log.Printf("Server started on %s (database: %s)", server.Addr, cfg.DB.Driver)
	log.Printf("Address: http://localhost:%d/", cfg.ServerPort)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}
}
