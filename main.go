package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/config"
	v1 "github.com/goodness-exchange/gx-protocol-backend-sub004/internal/controllers/v1"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/models"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/router"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/walletclient"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/worker"
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// gin uses debug as the default mode, we use release for
	// security reasons
	gin.SetMode(cfg.GinMode)

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	output := io.Writer(os.Stdout)
	if cfg.LogFormat == "human" || (cfg.LogFormat == "" && gin.IsDebugging()) {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	// Create the data directory
	err = os.MkdirAll(filepath.Dir(cfg.DatabaseFile), os.ModePerm)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// Connect to the database
	err = models.Connect(cfg.DatabaseFile)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// Wire up the wallet service. Without it, scheduled rules and the
	// unallocated funds check stay disabled.
	var balances models.WalletBalanceReader
	if cfg.WalletServiceURL != "" {
		balances = walletclient.New(cfg.WalletServiceURL)
		v1.WalletBalances = balances
	} else {
		log.Warn().Msg("WALLET_SERVICE_URL is not set, scheduled allocations are disabled")
	}

	r, err := router.Router(cfg)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go worker.New(models.DB, cfg, balances, nil).Run(ctx)

	srv := &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msg(err.Error())
		}
	}()

	// Wait for SIGINT or SIGTERM, then drain in-flight requests
	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Msg(err.Error())
	}

	log.Info().Msg("backend shut down")
}
