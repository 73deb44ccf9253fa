package database

import (
	"sync"
	"time"

	"github.com/clinicpulse/clinicpulse/internal/logging"
)

var (
	nowFunc             = time.Now
	retentionPeriodDays = 400
	retentionInterval   = 7 * 24 * time.Hour
)

// RetentionScheduler prunes KPI samples older than the retention period.
type RetentionScheduler struct {
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewRetentionScheduler creates a new retention scheduler
func NewRetentionScheduler() *RetentionScheduler {
	return &RetentionScheduler{
		stopChan: make(chan struct{}),
	}
}

// Start runs one prune immediately, then weekly until Stop.
func (rs *RetentionScheduler) Start() {
	logging.L().Info("starting kpi retention scheduler", "retention_days", retentionPeriodDays)
	go rs.scheduleCleanup()
}

// Stop gracefully stops the scheduler
func (rs *RetentionScheduler) Stop() {
	rs.stopOnce.Do(func() { close(rs.stopChan) })
}

func (rs *RetentionScheduler) scheduleCleanup() {
	ticker := time.NewTicker(retentionInterval)
	defer ticker.Stop()

	rs.pruneOldKPIs()

	for {
		select {
		case <-ticker.C:
			rs.pruneOldKPIs()
		case <-rs.stopChan:
			return
		}
	}
}

// pruneOldKPIs deletes samples recorded before the cutoff and returns how many went.
func (rs *RetentionScheduler) pruneOldKPIs() int64 {
	cutoff := nowFunc().AddDate(0, 0, -retentionPeriodDays)

	result, err := DB.Exec(`DELETE FROM kpi_timeseries WHERE recorded_at < $1`, cutoff)
	if err != nil {
		logging.L().Warn("failed to prune kpi samples", "cutoff", cutoff.Format(time.DateOnly), "error", err)
		return 0
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		logging.L().Warn("failed to count pruned kpi samples", "error", err)
		return 0
	}

	if deleted > 0 {
		logging.L().Info("kpi retention cleanup complete", "cutoff", cutoff.Format(time.DateOnly), "deleted", deleted)
	}
	return deleted
}
