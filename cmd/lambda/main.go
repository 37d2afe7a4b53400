package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"

	"github.com/saulo-duarte/edugen-api/internal/config"
	"github.com/saulo-duarte/edugen-api/internal/container"
)

var adapter *chiadapter.ChiLambda

func init() {
	ctx := context.Background()

	settings, err := config.Load()
	if err != nil {
		config.Logger.WithError(err).Fatal("Failed to load settings")
	}
	c, err := container.New(ctx, settings)
	if err != nil {
		config.Logger.WithError(err).Fatal("Failed to build container")
	}

	r := chi.NewRouter()
	r.Mount("/", c.Router())
	adapter = chiadapter.New(r)
}

func handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return adapter.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(handler)
}
