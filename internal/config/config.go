// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration of the service.
type Config struct {
	// ListenAddress is the address the HTTP server binds to.
	ListenAddress string `env:"LISTEN_ADDRESS" envDefault:":8080"`

	// DatabaseFile is the path of the sqlite database file.
	DatabaseFile string `env:"DATABASE_FILE" envDefault:"data/gorm.db"`

	// GinMode sets the gin framework mode, e.g. "release" or "debug".
	GinMode string `env:"GIN_MODE" envDefault:"release"`

	// LogFormat selects "json" or "human" readable log output.
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// CORSAllowOrigins is a space separated list of allowed CORS origins.
	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS"`

	// APIURL is the URL the API is reachable at, used in resource links.
	APIURL string `env:"API_URL" envDefault:"http://localhost:8080"`

	// EnablePprof exposes the pprof endpoints when set.
	EnablePprof bool `env:"ENABLE_PPROF"`

	// WalletServiceURL is the base URL of the wallet custody service.
	// Scheduled percentage rules and unallocated funds checks are
	// disabled when it is empty.
	WalletServiceURL string `env:"WALLET_SERVICE_URL"`

	// ScheduledSweepInterval is how often due scheduled rules are
	// executed.
	ScheduledSweepInterval time.Duration `env:"SCHEDULED_SWEEP_INTERVAL" envDefault:"1m"`

	// BudgetSweepInterval is how often budget periods are completed and
	// alerts are checked.
	BudgetSweepInterval time.Duration `env:"BUDGET_SWEEP_INTERVAL" envDefault:"5m"`

	// ReconciliationInterval is how often cached sub-account balances
	// are verified against the ledger.
	ReconciliationInterval time.Duration `env:"RECONCILIATION_INTERVAL" envDefault:"1h"`
}

// Parse loads the configuration from the environment.
func Parse() (Config, error) {
	var config Config
	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	return config, nil
}
