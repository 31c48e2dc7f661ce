package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/notes-api-nosql/internal/config"
	"github.com/notes-api-nosql/internal/infrastructure/dynamo"
	"github.com/notes-api-nosql/internal/infrastructure/google"
	jwtinfra "github.com/notes-api-nosql/internal/infrastructure/jwt"
	"github.com/notes-api-nosql/internal/infrastructure/memory"
	"github.com/notes-api-nosql/internal/infrastructure/smtp"
	transporthttp "github.com/notes-api-nosql/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	jwtProvider, err := jwtinfra.NewProvider(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	deps := &transporthttp.Deps{
		OTPSender:   smtp.NewOTPSender(smtp.NewMailer(cfg), cfg.AppName),
		Google:      google.NewVerifier(cfg.GoogleClientID),
		JWTProvider: jwtProvider,
		OTPTTL:      cfg.OTPTTL,
	}

	switch cfg.StoreDriver {
	case "memory":
		log.Println("Using in-memory stores; data is lost on restart")
		deps.UserRepo = memory.NewUserRepo()
		deps.NoteRepo = memory.NewNoteRepo()
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		dynamoClient, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			cancel()
			log.Fatalf("dynamodb client: %v", err)
		}
		// Create tables and GSIs if they don't exist yet.
		dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)
		cancel()
		deps.UserRepo = dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
		deps.NoteRepo = dynamo.NewNoteRepo(dynamoClient, cfg.DynamoTables.Notes)
	}

	router, stop := transporthttp.NewRouter(cfg, deps)
	defer stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, store=%s)", cfg.AppPort, cfg.AppEnv, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
