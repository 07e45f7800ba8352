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

	"ocpe/internal/api"
	"ocpe/internal/api/view"
	"ocpe/internal/app/service"
	"ocpe/internal/app/session"
	"ocpe/internal/common/security"
	"ocpe/internal/domain/repository"
	"ocpe/internal/platform/config"
	"ocpe/internal/platform/database"
	"ocpe/internal/platform/kvstore"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	if err := database.Migrate(config.AppConfig); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis
	kvstore.ConnectRedis()
	defer kvstore.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories
	userRepo := repository.NewSQLUserRepository(database.DB)
	problemRepo := repository.NewSQLProblemRepository(database.DB)

	// 6. Initialize Services
	sessions := session.NewStore(kvstore.RDB, config.AppConfig.SessionKeyPrefix)
	authService := service.NewAuthService(userRepo, sessions, config.AppConfig.SessionTTL, config.AppConfig.RememberTTL)
	problemService := service.NewProblemService(problemRepo)

	// 7. Parse Templates
	renderer, err := view.New()
	if err != nil {
		log.Fatalf("Could not parse templates: %v", err)
	}

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(authService, problemService, renderer, api.RouterOptions{
		CookieSecure:           config.AppConfig.CookieSecure,
		ProblemCreatedRedirect: config.AppConfig.ProblemCreatedRedirect,
	})

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
