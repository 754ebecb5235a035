package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"rtn-loyalty-tier3/db"
	"rtn-loyalty-tier3/engine"
	"rtn-loyalty-tier3/pos"
	"rtn-loyalty-tier3/repository"
	"rtn-loyalty-tier3/service"
)

// dailyCountRetentionDays is how long counter rows survive; the cap only
// ever reads today's row.
const dailyCountRetentionDays = 7

// Config holds every tunable the sidecar reads from the environment.
type Config struct {
	ListenAddr              string
	DefaultStoreID          string
	DefaultLoyaltyDiscount  decimal.Decimal
	DailyManagerCardCap     int
	AgeVerificationRequired bool
	CatalogAPIBaseURL       string
	CatalogAPIToken         string
	CatalogSyncInterval     time.Duration
}

// LoadConfig reads the configuration from environment variables with defaults.
func LoadConfig() Config {
	cfg := Config{
		ListenAddr:              envOr("LISTEN_ADDR", "0.0.0.0:7900"),
		DefaultStoreID:          envOr("STORE_ID", "UNKNOWN"),
		DefaultLoyaltyDiscount:  decimal.RequireFromString("0.97"),
		DailyManagerCardCap:     5,
		AgeVerificationRequired: envBool("AGE_VERIFICATION_REQUIRED"),
		CatalogAPIBaseURL:       os.Getenv("CATALOG_API_BASE_URL"),
		CatalogAPIToken:         os.Getenv("CATALOG_API_TOKEN"),
	}

	if raw := os.Getenv("DEFAULT_LOYALTY_DISCOUNT"); raw != "" {
		if d, err := decimal.NewFromString(raw); err == nil && !d.IsNegative() {
			cfg.DefaultLoyaltyDiscount = d
		} else {
			log.Printf("⚠️ LoadConfig: ignoring invalid DEFAULT_LOYALTY_DISCOUNT=%q", raw)
		}
	}
	if raw := os.Getenv("DAILY_MANAGER_CARD_CAP"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.DailyManagerCardCap = n
		} else {
			log.Printf("⚠️ LoadConfig: ignoring invalid DAILY_MANAGER_CARD_CAP=%q", raw)
		}
	}
	if raw := os.Getenv("CATALOG_SYNC_INTERVAL_MINUTES"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.CatalogSyncInterval = time.Duration(n) * time.Minute
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

// App wires the database, repositories, decision engine, POS server and
// catalog sync together.
type App struct {
	Config Config
	Server *pos.Server
	Sync   *service.SyncService

	dailyCounts *repository.DailyCountRepository
}

// Initialize initializes the application
func Initialize(cfg Config) (*App, error) {
	// Initialize database connection
	if err := db.InitDB(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repositories
	customerRepo := repository.NewCustomerRepository()
	dailyCountRepo := repository.NewDailyCountRepository()
	validationLogRepo := repository.NewValidationLogRepository()
	avtRepo := repository.NewAVTRepository()
	transactionRepo := repository.NewTransactionRepository()
	catalogRepo := repository.NewCatalogRepository()
	allowanceRepo := repository.NewAllowanceRepository()

	// Initialize decision engine
	eng := engine.NewEngine(engine.Dependencies{
		Customers:    customerRepo,
		DailyCounts:  dailyCountRepo,
		Validations:  validationLogRepo,
		AVT:          avtRepo,
		Transactions: transactionRepo,
		Catalog:      catalogRepo,
		Allowances:   allowanceRepo,
	}, engine.Config{
		DefaultLoyaltyDiscount: cfg.DefaultLoyaltyDiscount,
		DailyManagerCardCap:    cfg.DailyManagerCardCap,
	})

	// Initialize POS server
	handler := pos.NewHandler(eng, pos.HandlerConfig{
		DefaultStoreID:          cfg.DefaultStoreID,
		AgeVerificationRequired: cfg.AgeVerificationRequired,
	})
	server := pos.NewServer(cfg.ListenAddr, handler)

	// Initialize catalog sync
	tokens := service.NewStaticTokenProvider(cfg.CatalogAPIToken)
	apiClient := service.NewManufacturerAPIClient(cfg.CatalogAPIBaseURL, tokens)
	syncService := service.NewSyncService(apiClient, catalogRepo, allowanceRepo)

	return &App{
		Config:      cfg,
		Server:      server,
		Sync:        syncService,
		dailyCounts: dailyCountRepo,
	}, nil
}

// Run installs the schema, performs startup housekeeping and serves POS
// traffic until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := db.InstallSchema(ctx); err != nil {
		return err
	}

	// Stale counter rows are only noise; losing the cleanup is not fatal.
	if _, err := a.dailyCounts.Cleanup(ctx, dailyCountRetentionDays); err != nil {
		log.Printf("⚠️ Run: daily count cleanup failed: %v", err)
	}

	if a.Config.CatalogSyncInterval > 0 {
		go a.Sync.RunPeriodic(ctx, a.Config.CatalogSyncInterval)
	}

	return a.Server.ListenAndServe(ctx)
}
