// Package main provides the entry point for the typed graph API server.
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/emergent-company/typedgraph/domain/graph"
	"github.com/emergent-company/typedgraph/domain/health"
	"github.com/emergent-company/typedgraph/internal/config"
	"github.com/emergent-company/typedgraph/internal/database"
	"github.com/emergent-company/typedgraph/internal/migrate"
	"github.com/emergent-company/typedgraph/internal/server"
	"github.com/emergent-company/typedgraph/pkg/logger"
)

func main() {
	// Load() never overwrites variables already set; Overload() does, so
	// .env.local wins over .env.
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure
		logger.Module,
		config.Module,
		database.Module,
		migrate.Module,
		server.Module,

		// Domain
		health.Module,
		graph.Module,
	).Run()
}
