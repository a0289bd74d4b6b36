package cornjob

import (
	"context"

	"github.com/syndtr/goleveldb/leveldb"

	"stake-ledger/db"
	"stake-ledger/ledger"
	"stake-ledger/logger"
	"stake-ledger/types"
	"stake-ledger/util/clock"
	"stake-ledger/util/cron"
)

type SnapshotJob struct {
	ldb    *db.LDB
	ledger *ledger.Ledger
	clock  clock.Clock
}

// CronJobLedgerInit schedules the daily per-project active-total snapshot.
func CronJobLedgerInit(ldb *db.LDB, l *ledger.Ledger, clk clock.Clock, spec string) *cron.Cron {
	if spec == "" {
		spec = "0 0 0 * * *"
	}
	c := cron.NewCron()
	c.Register("Ledger snapshot job", spec, NewSnapshotJob(ldb, l, clk).saveSnapshots)
	c.Start()
	return c
}

func NewSnapshotJob(ldb *db.LDB, l *ledger.Ledger, clk clock.Clock) *SnapshotJob {
	return &SnapshotJob{ldb: ldb, ledger: l, clock: clk}
}

func (j *SnapshotJob) saveSnapshots(ctx context.Context) error {
	totals := j.ledger.ProjectActiveTotals()
	now := j.clock.Now()

	for projectID, amount := range totals {
		snap := &types.StakeSnapshot{
			ProjectID: projectID,
			Amount:    amount,
			Time:      now,
		}
		err := j.ldb.Transaction(func(d *db.LDB, batch *leveldb.Batch) error {
			return db.StoreRecord(d.DB, batch, snap)
		})
		if err != nil {
			logger.Logger.Errorf("snapshot job store project %s: %v", projectID, err)
			return err
		}
	}
	return nil
}
