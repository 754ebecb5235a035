package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"rtn-loyalty-tier3/app"
	"rtn-loyalty-tier3/db"
)

func main() {
	initDBOnly := flag.Bool("init-db", false, "install the database schema and exit")
	syncOnly := flag.Bool("sync", false, "run one catalog sync and exit")
	flag.Parse()

	// Load .env file in development (ignores error if file doesn't exist)
	// In production, variables should be set directly
	if os.Getenv("ENV") != "production" {
		if err := godotenv.Overload(".env"); err != nil {
			log.Printf("Warning: .env file not found, using system environment variables")
		} else {
			log.Printf("Loaded environment variables from .env (overriding system variables)")
		}
	}

	cfg := app.LoadConfig()

	application, err := app.Initialize(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer db.CloseDB()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case *initDBOnly:
		if err := db.InstallSchema(ctx); err != nil {
			log.Fatal(err)
		}
		log.Printf("✅ Schema install complete")

	case *syncOnly:
		stats, err := application.Sync.SyncCatalog(ctx)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("✅ Catalog sync complete: %d skus, %d allowances", stats.SKUsUpserted, stats.AllowancesUpserted)

	default:
		log.Printf("Tier 3 loyalty sidecar starting on %s", cfg.ListenAddr)
		if err := application.Run(ctx); err != nil {
			log.Fatal(err)
		}
	}
}
