package cornjob

import (
	"context"
	"testing"
	"time"

	"stake-ledger/asset"
	"stake-ledger/auth"
	"stake-ledger/db"
	"stake-ledger/events"
	"stake-ledger/ledger"
	"stake-ledger/service"
	"stake-ledger/util/clock"
)

func TestSnapshotJob(t *testing.T) {
	ldb := db.NewMemLdb()
	t.Cleanup(func() { ldb.Close() })

	mem := asset.NewMemLedger()
	clk := clock.NewManual(time.Unix(1700000000, 0))
	l, err := ledger.New(ldb, mem, auth.NewStatic("admin"), clk, events.NewBus())
	if err != nil {
		t.Fatal(err)
	}

	if err := l.RegisterProject("admin", "p1", "token-a"); err != nil {
		t.Fatal(err)
	}
	if err := l.AddDuration("admin", 30); err != nil {
		t.Fatal(err)
	}
	mem.Mint("token-a", "alice", 10_000)
	if _, err := l.OpenStake("alice", 1500, 30, "p1"); err != nil {
		t.Fatal(err)
	}
	if _, err := l.OpenStake("alice", 500, 30, "p1"); err != nil {
		t.Fatal(err)
	}

	job := NewSnapshotJob(ldb, l, clk)
	if err := job.saveSnapshots(context.Background()); err != nil {
		t.Fatal(err)
	}
	clk.Advance(24 * time.Hour)
	if err := job.saveSnapshots(context.Background()); err != nil {
		t.Fatal(err)
	}

	s := service.NewService(ldb, l)
	snapshots, total, err := s.GetSnapshots("p1", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(snapshots) != 2 {
		t.Fatalf("total %d len %d", total, len(snapshots))
	}
	// newest first
	if snapshots[0].Amount != "2000" || !snapshots[0].Time.After(snapshots[1].Time) {
		t.Errorf("snapshots = %+v", snapshots)
	}
}
