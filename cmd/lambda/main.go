package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"jira_gateway/internal/config"
	"jira_gateway/internal/handler"
	"jira_gateway/internal/logger"
)

var ginLambda *ginadapter.GinLambda

func handleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
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

	ginLambda = ginadapter.New(handler.NewRouter(h))
	lambda.Start(handleRequest)
}
