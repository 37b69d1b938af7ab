package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"jira_gateway/internal/config"
	"jira_gateway/internal/handler"
	"jira_gateway/internal/logger"
	mcpserver "jira_gateway/internal/service/mcp-server"
)

func main() {
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

	// Create new MCP server
	server, err := mcpserver.NewServer(h)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Start server
	fmt.Println("Starting Jira gateway MCP server...")
	if err := mcpserver.Serve(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
