package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/shyamanurag/school-management-system-sub000/app/config"
)

// StartScheduler starts the background sweep scheduler. The sweeps fire once
// a day at Policy.SweepHour:05 local time; all three are idempotent, so a
// restart inside the window at worst repeats a no-op.
func StartScheduler(db *sql.DB, pol config.FeePolicy, notifier Notifier) {
	go func() {
		log := config.Logger()
		log.Infow("scheduler started", "sweep_hour", pol.SweepHour)
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			now := time.Now()

			if now.Hour() == pol.SweepHour && now.Minute() == 5 {
				log.Infow("running scheduled sweeps", "at", now.Format("15:04"))
				ctx := context.Background()

				if _, err := RunAccrualSweep(ctx, db, now); err != nil {
					log.Errorw("accrual sweep failed", "error", err)
				}
				if _, err := RunDefaulterSweep(ctx, db, pol, notifier, now); err != nil {
					log.Errorw("defaulter sweep failed", "error", err)
				}
				if _, err := RunReminderScan(db, pol, notifier, now); err != nil {
					log.Errorw("reminder scan failed", "error", err)
				}
			}
		}
	}()
}
