package db

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"

	"stake-ledger/types"
)

func newTestDb(t *testing.T) *LDB {
	t.Helper()
	l := NewMemLdb()
	t.Cleanup(func() { l.Close() })
	return l
}

func storeStake(t *testing.T, l *LDB, st *types.Stake) {
	t.Helper()
	err := l.Transaction(func(d *LDB, batch *leveldb.Batch) error {
		return StoreRecord(d.DB, batch, st)
	})
	if err != nil {
		t.Fatalf("store stake: %v", err)
	}
}

func TestAutoIdMonotonic(t *testing.T) {
	l := newTestDb(t)

	for want := uint64(1); want <= 5; want++ {
		st := &types.Stake{Owner: "alice", Amount: want * 10}
		storeStake(t, l, st)
		if st.ID != want {
			t.Fatalf("assigned id = %d, want %d", st.ID, want)
		}
	}
	last, err := l.LastID((&types.Stake{}).Prefix())
	if err != nil {
		t.Fatal(err)
	}
	if last != 5 {
		t.Errorf("last id = %d, want 5", last)
	}
}

func TestGetRecord(t *testing.T) {
	l := newTestDb(t)

	st := &types.Stake{Owner: "alice", Amount: 42, CreatedAt: time.Unix(1700000000, 0)}
	storeStake(t, l, st)

	got := &types.Stake{ID: st.ID}
	found, err := l.GetRecord(got)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("stake not found")
	}
	if got.Owner != "alice" || got.Amount != 42 {
		t.Errorf("loaded %+v", got)
	}

	missing := &types.Stake{ID: 999}
	found, err = l.GetRecord(missing)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("missing record reported found")
	}
}

func TestIterPrefixOrder(t *testing.T) {
	l := newTestDb(t)

	// enough records to cross a digit boundary: unpadded keys would
	// iterate 1, 10, 11, 2, ...
	for i := 0; i < 12; i++ {
		storeStake(t, l, &types.Stake{Owner: "alice"})
	}

	var ids []uint64
	err := l.IterPrefix((&types.Stake{}).Prefix(), func(value []byte) error {
		st := &types.Stake{}
		if err := json.Unmarshal(value, st); err != nil {
			return err
		}
		ids = append(ids, st.ID)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 12 {
		t.Fatalf("iterated %d records", len(ids))
	}
	for i, id := range ids {
		if id != uint64(i+1) {
			t.Fatalf("iteration order broken at position %d: %v", i, ids)
		}
	}
}

func TestIterPage(t *testing.T) {
	l := newTestDb(t)

	for i := 0; i < 10; i++ {
		storeStake(t, l, &types.Stake{Owner: "alice"})
	}

	values, total, err := l.IterPage((&types.Stake{}).Prefix(), 3, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	if total != 10 || len(values) != 3 {
		t.Fatalf("total %d len %d", total, len(values))
	}
	first := &types.Stake{}
	if err := json.Unmarshal(values[0], first); err != nil {
		t.Fatal(err)
	}
	if first.ID != 1 {
		t.Errorf("ascending first id = %d", first.ID)
	}

	values, _, err = l.IterPage((&types.Stake{}).Prefix(), 3, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	newest := &types.Stake{}
	if err := json.Unmarshal(values[0], newest); err != nil {
		t.Fatal(err)
	}
	if newest.ID != 8 {
		t.Errorf("descending offset 2 first id = %d, want 8", newest.ID)
	}

	if _, _, err := l.IterPage("Stake_", 0, 0, true); err == nil {
		t.Error("zero limit accepted")
	}
	if _, _, err := l.IterPage("Stake_", 5, -1, true); err == nil {
		t.Error("negative offset accepted")
	}
}

func TestTransactionAbort(t *testing.T) {
	l := newTestDb(t)

	boom := errors.New("boom")
	err := l.Transaction(func(d *LDB, batch *leveldb.Batch) error {
		if err := StoreRecord(d.DB, batch, &types.Stake{Owner: "alice"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("transaction error = %v", err)
	}

	// neither the record nor the id counter committed
	last, err := l.LastID((&types.Stake{}).Prefix())
	if err != nil {
		t.Fatal(err)
	}
	if last != 0 {
		t.Errorf("aborted transaction advanced id counter to %d", last)
	}
	st := &types.Stake{ID: 1}
	found, _ := l.GetRecord(st)
	if found {
		t.Error("aborted transaction persisted record")
	}
}

func TestUpdateRecordKeepsId(t *testing.T) {
	l := newTestDb(t)

	st := &types.Stake{Owner: "alice", Status: types.StatusActive}
	storeStake(t, l, st)

	st.Status = types.StatusUnstaked
	err := l.Transaction(func(d *LDB, batch *leveldb.Batch) error {
		return UpdateRecord(batch, st)
	})
	if err != nil {
		t.Fatal(err)
	}

	got := &types.Stake{ID: st.ID}
	if _, err := l.GetRecord(got); err != nil {
		t.Fatal(err)
	}
	if got.Status != types.StatusUnstaked {
		t.Errorf("status = %s", got.Status)
	}
	last, _ := l.LastID((&types.Stake{}).Prefix())
	if last != 1 {
		t.Errorf("update advanced id counter to %d", last)
	}
}
