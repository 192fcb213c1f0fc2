// Command migrate applies the embedded graph schema migrations.
//
//	migrate [-env .env] up|up-to <version>|down|status|version|pending
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"

	"github.com/emergent-company/typedgraph/internal/config"
	"github.com/emergent-company/typedgraph/internal/migrate"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file to load before reading configuration")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: migrate [-env .env] up|up-to <version>|down|status|version|pending")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load(*envFile)

	if err := run(context.Background(), flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := migrate.NewZapLogger(cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN())))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	m := migrate.NewMigrator(db, log)

	switch args[0] {
	case "up":
		return m.Up(ctx)
	case "up-to":
		if len(args) < 2 {
			return fmt.Errorf("up-to requires a version")
		}
		version, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		return m.UpTo(ctx, version)
	case "down":
		return m.Down(ctx)
	case "status":
		return m.Status(ctx)
	case "version":
		version, err := m.Version(ctx)
		if err != nil {
			return err
		}
		log.Info("current database version", zap.Int64("version", version))
		return nil
	case "pending":
		version, err := m.Version(ctx)
		if err != nil {
			return err
		}
		pending, err := migrate.Pending(version)
		if err != nil {
			return err
		}
		for _, mig := range pending {
			log.Info("pending migration", zap.Int64("version", mig.Version), zap.String("source", mig.Source))
		}
		log.Info("pending migrations", zap.Int("count", len(pending)))
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
