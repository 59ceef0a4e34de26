package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"food-assist-agent/handler"
	"food-assist-agent/internal/integrations/paramstore"
	"food-assist-agent/internal/integrations/webhook"
	"food-assist-agent/internal/repository"
	"food-assist-agent/internal/session"
	"food-assist-agent/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	// Every knob is optional: a missing sink degrades the service instead of
	// failing startup.
	tableName := envOr("TABLE_NAME", repository.DefaultTableName)
	webhookURL := os.Getenv("FULFILLMENT_WEBHOOK_URL")
	paramPrefix := os.Getenv("PARAM_PREFIX")
	ttlMinutes := envInt("SESSION_TTL_MINUTES", 30)
	corsOrigins := splitList(os.Getenv("CORS_ORIGINS"))

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Sinks ----
	var storage usecase.StorageSink
	repo, err := repository.New(awsdynamodb.NewFromConfig(cfg), tableName)
	if err != nil {
		slog.Warn("storage sink disabled", "err", err)
	} else {
		storage = repo
	}

	opts := []webhook.Option{webhook.WithURL(webhookURL)}
	if paramPrefix != "" {
		ps, psErr := paramstore.New(awsssm.NewFromConfig(cfg))
		if psErr != nil {
			slog.Warn("parameter store unavailable, falling back to env webhook URL", "err", psErr)
		} else {
			opts = append(opts, webhook.WithParamStore(ps, paramPrefix))
		}
	}
	notifier := webhook.NewClient(opts...)

	// ---- Session store ----
	store := session.NewMemoryStore(time.Duration(ttlMinutes) * time.Minute)
	defer store.Close()

	// ---- Handler ----
	chatService, err := usecase.NewChatService(store, usecase.NewDispatcher(storage, notifier))
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(chatService, corsOrigins)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
