package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/yugui923/db-connect-mcp/pkg/analyzer"
	"github.com/yugui923/db-connect-mcp/pkg/config"
	"github.com/yugui923/db-connect-mcp/pkg/database"
	"github.com/yugui923/db-connect-mcp/pkg/dburl"
	"github.com/yugui923/db-connect-mcp/pkg/dialect"
	"github.com/yugui923/db-connect-mcp/pkg/executor"
	"github.com/yugui923/db-connect-mcp/pkg/inspector"
	"github.com/yugui923/db-connect-mcp/pkg/logging"
	"github.com/yugui923/db-connect-mcp/pkg/mcp"
	"github.com/yugui923/db-connect-mcp/pkg/mcp/tools"
	"github.com/yugui923/db-connect-mcp/pkg/retry"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	normalized, err := dburl.Normalize(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("invalid database URL",
			zap.String("url", logging.SanitizeConnectionString(cfg.DatabaseURL)),
			zap.Error(err))
	}

	adapter, err := dialect.New(normalized.Dialect)
	if err != nil {
		logger.Fatal("unsupported dialect", zap.Error(err))
	}

	ctx := context.Background()

	// Retry only here at bootstrap, so a database that is still starting
	// up does not kill the server. Once connected, failures surface
	// immediately.
	var manager *database.Manager
	err = retry.DoIfRetryable(ctx, nil, func() error {
		var connectErr error
		manager, connectErr = database.NewManager(ctx, cfg, normalized, logger)
		return connectErr
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer manager.Close()

	srv := mcp.NewServer("db-connect-mcp", cfg.Version, logger)
	tools.RegisterAll(srv.MCP(), &tools.Deps{
		Adapter:   adapter,
		Inspector: inspector.New(manager, adapter, logger),
		Executor:  executor.New(manager, adapter, logger),
		Analyzer:  analyzer.New(manager, adapter, logger),
		Logger:    logger,
	})

	if err := srv.ServeStdio(); err != nil {
		logger.Fatal("server terminated", zap.Error(err))
	}
}
