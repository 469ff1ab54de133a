// Command valnk-stream is the Lambda function attached to the content
// table's stream. It audits record keys and cascades deletes to children.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/jacentio/valnk/store"
	"github.com/jacentio/valnk/stream"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	s := store.NewWithRegistry(dynamodb.NewFromConfig(cfg), store.Config{
		TableName: os.Getenv("VALNK_TABLE"),
		Logger:    logger,
	}, store.DefaultRegistry())

	lambda.Start(stream.NewHandler(s, logger).HandleStream)
}
