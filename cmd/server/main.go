package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"jira_gateway/internal/config"
	"jira_gateway/internal/handler"
	"jira_gateway/internal/logger"
)

func main() {
	// Load environment variables from .env when present
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	h, err := handler.Build(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to build handler: %v", err)
	}

	router := handler.NewRouter(h)
	fmt.Printf("Starting Jira gateway on %s\n", cfg.Addr())
	if err := router.Run(cfg.Addr()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
