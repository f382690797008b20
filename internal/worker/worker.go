// Package worker runs the periodic background sweeps: scheduled
// allocations, budget period maintenance and ledger reconciliation.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/config"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/metrics"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/models"
)

// Notifier delivers budget alerts. Delivery itself is out of scope for
// the backend, the default implementation logs the alert.
type Notifier interface {
	NotifyBudgetAlert(period models.BudgetPeriod)
}

// LogNotifier logs budget alerts with zerolog.
type LogNotifier struct{}

func (LogNotifier) NotifyBudgetAlert(period models.BudgetPeriod) {
	log.Warn().
		Str("budgetPeriod", period.ID.String()).
		Str("wallet", period.WalletID.String()).
		Str("status", string(period.Status)).
		Str("spent", period.SpentAmount.String()).
		Str("budget", period.BudgetAmount.String()).
		Msg("budget alert")
}

// Worker runs the background sweeps until its context is cancelled.
type Worker struct {
	db       *gorm.DB
	cfg      config.Config
	balances models.WalletBalanceReader
	notifier Notifier
}

// New returns a worker. balances may be nil; the scheduled allocation
// sweep is skipped then since percentage rules cannot be evaluated
// without the wallet balance.
func New(db *gorm.DB, cfg config.Config, balances models.WalletBalanceReader, notifier Notifier) *Worker {
	if notifier == nil {
		notifier = LogNotifier{}
	}

	return &Worker{
		db:       db,
		cfg:      cfg,
		balances: balances,
		notifier: notifier,
	}
}

// Run blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	scheduled := time.NewTicker(w.cfg.ScheduledSweepInterval)
	defer scheduled.Stop()

	budgets := time.NewTicker(w.cfg.BudgetSweepInterval)
	defer budgets.Stop()

	reconciliation := time.NewTicker(w.cfg.ReconciliationInterval)
	defer reconciliation.Stop()

	log.Info().
		Dur("scheduledSweepInterval", w.cfg.ScheduledSweepInterval).
		Dur("budgetSweepInterval", w.cfg.BudgetSweepInterval).
		Dur("reconciliationInterval", w.cfg.ReconciliationInterval).
		Msg("worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("worker stopped")
			return
		case <-scheduled.C:
			w.runScheduledAllocations()
		case <-budgets.C:
			w.runBudgetMaintenance()
		case <-reconciliation.C:
			w.runReconciliation()
		}
	}
}

func (w *Worker) runScheduledAllocations() {
	if w.balances == nil {
		log.Debug().Msg("no wallet service configured, skipping scheduled allocation sweep")
		return
	}

	start := time.Now()
	result, err := models.ProcessScheduledAllocations(w.db, w.balances, start)
	metrics.SweepDuration.WithLabelValues("scheduled_allocations").Observe(time.Since(start).Seconds())

	if err != nil {
		log.Error().Err(err).Msg("scheduled allocation sweep")
		return
	}

	for i := 0; i < result.Executed; i++ {
		metrics.AllocationExecutions.WithLabelValues(string(models.ExecutionTriggerScheduled), string(models.ExecutionStatusCompleted)).Inc()
	}
	for i := 0; i < result.Failed; i++ {
		metrics.AllocationExecutions.WithLabelValues(string(models.ExecutionTriggerScheduled), string(models.ExecutionStatusFailed)).Inc()
	}

	if result.Due > 0 {
		log.Info().
			Int("due", result.Due).
			Int("executed", result.Executed).
			Int("failed", result.Failed).
			Int("skipped", result.Skipped).
			Msg("scheduled allocation sweep")
	}
}

func (w *Worker) runBudgetMaintenance() {
	start := time.Now()
	defer func() {
		metrics.SweepDuration.WithLabelValues("budget_maintenance").Observe(time.Since(start).Seconds())
	}()

	completed, err := models.CompleteExpiredBudgets(w.db, start)
	if err != nil {
		log.Error().Err(err).Msg("completing expired budget periods")
		return
	}

	if completed > 0 {
		log.Info().Int64("completed", completed).Msg("budget periods completed")
	}

	alerts, err := models.CheckBudgetAlerts(w.db, start)
	if err != nil {
		log.Error().Err(err).Msg("checking budget alerts")
		return
	}

	for _, period := range alerts {
		metrics.BudgetAlerts.Inc()
		w.notifier.NotifyBudgetAlert(period)
	}
}

func (w *Worker) runReconciliation() {
	start := time.Now()
	mismatches, err := models.ReconcileBalances(w.db)
	metrics.SweepDuration.WithLabelValues("reconciliation").Observe(time.Since(start).Seconds())

	if err != nil {
		log.Error().Err(err).Msg("ledger reconciliation")
		return
	}

	metrics.ReconciliationMismatches.Set(float64(len(mismatches)))

	for _, mismatch := range mismatches {
		log.Error().
			Str("subAccount", mismatch.SubAccountID.String()).
			Str("cachedBalance", mismatch.CachedBalance.String()).
			Str("ledgerBalance", mismatch.LedgerBalance.String()).
			Msg("cached balance disagrees with ledger")
	}
}
