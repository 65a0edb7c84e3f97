// Package main initializes and starts the document backend server,
// setting up configuration, logging, database connections, repositories,
// services and handlers.
package main

import (
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/yhamdani/locadrive/internal/config"
	"github.com/yhamdani/locadrive/internal/db"
	"github.com/yhamdani/locadrive/internal/logger"
	"github.com/yhamdani/locadrive/internal/repository"
	"github.com/yhamdani/locadrive/internal/server/handler/http"
	"github.com/yhamdani/locadrive/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const tokenTTL = 24 * time.Hour

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()
	addr := options.Port
	dbName := options.DatabaseDSN

	// Print build metadata (or "N/A" if unset).
	printVersion := version
	if printVersion == "" {
		printVersion = "N/A"
	}
	printDate := buildDate
	if printDate == "" {
		printDate = "N/A"
	}
	fmt.Printf("Build version: %s\n", printVersion)
	fmt.Printf("Build date: %s\n", printDate)

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(dbName)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Purge soft-deleted documents in the background.
	db.StartSoftDeleteCleaner(context.Background(), postgresDB,
		time.Hour,       // interval
		30*24*time.Hour, // retention: 30 days
		zapLogger,
	)

	// Initialize repositories for documents and account lookups.
	docRepo := repository.NewPostgresDocumentRepository(postgresDB)
	accountRepo := repository.NewPostgresAccountRepository(postgresDB)

	// Initialize business-logic services. The document service seeds its
	// live in-memory store from persistence before serving.
	docService := service.NewDocumentService(docRepo, zapLogger)
	if err := docService.Start(context.Background()); err != nil {
		zapLogger.Fatal("cannot seed document store", zap.Error(err))
	}
	authService := service.NewAuthService(accountRepo, docService, options.TokenSecret, tokenTTL)

	// Create HTTP handlers for auth and collection endpoints.
	authHandler := &http.AuthHandler{AuthService: authService}
	collectionHandler := &http.CollectionHandler{Docs: docService, Log: zapLogger}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, collectionHandler, authService.TokenSecret(), zapLogger)

	server := &nethttp.Server{
		Addr:    addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
