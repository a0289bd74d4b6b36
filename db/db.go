package db

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"stake-ledger/types"
)

const dbName = "stake_ledger_"

type LDB struct {
	DB   *leveldb.DB
	lock sync.RWMutex
}

// NewLdb opens (or creates) the store under the user's home directory,
// suffixed so several instances can coexist.
func NewLdb(tailFix string) (*LDB, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	db, err := leveldb.OpenFile(homeDir+"/."+dbName+tailFix, nil)
	if err != nil {
		return nil, errors.Wrap(err, "open leveldb")
	}
	return &LDB{DB: db}, nil
}

// NewMemLdb backs the store with leveldb's memory storage. Used by tests
// and by the binary when no durable path is configured.
func NewMemLdb() *LDB {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		panic(err)
	}
	return &LDB{DB: db}
}

func (l *LDB) Close() error {
	return l.DB.Close()
}

// Transaction stages writes into a batch and commits them as one unit.
// If fc returns an error nothing is written.
func (l *LDB) Transaction(fc func(l *LDB, batch *leveldb.Batch) error) error {
	batch := new(leveldb.Batch)
	l.lock.Lock()
	defer l.lock.Unlock()
	if err := fc(l, batch); err != nil {
		return err
	}
	return l.DB.Write(batch, nil)
}

// GetRecord loads the record stored under record.Key() into record.
// Returns false with no error when the key is absent.
func (l *LDB) GetRecord(record types.DbRecord) (bool, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	data, err := l.DB.Get([]byte(record.Key()), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, record); err != nil {
		return false, errors.Wrapf(err, "unmarshal record %s", record.Key())
	}
	return true, nil
}

// IterPrefix walks every value under prefix in key order. fn returning an
// error stops the walk.
func (l *LDB) IterPrefix(prefix string, fn func(value []byte) error) error {
	l.lock.RLock()
	defer l.lock.RUnlock()

	iter := l.DB.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()
	for iter.Next() {
		if err := fn(iter.Value()); err != nil {
			return err
		}
	}
	return iter.Error()
}

// IterPage returns a page of raw values under prefix plus the total count.
// Descending order starts from the newest key.
func (l *LDB) IterPage(prefix string, limit, offset int, ascending bool) ([][]byte, int, error) {
	if limit <= 0 {
		return nil, 0, errors.New("limit must be greater than 0")
	}
	if offset < 0 {
		return nil, 0, errors.New("offset cannot be negative")
	}

	l.lock.RLock()
	defer l.lock.RUnlock()

	iter := l.DB.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()

	total := 0
	for iter.Next() {
		total++
	}
	if err := iter.Error(); err != nil {
		return nil, 0, err
	}

	var values [][]byte
	advance := iter.Next
	ok := iter.First()
	if !ascending {
		ok = iter.Last()
		advance = iter.Prev
	}
	skipped := 0
	for ; ok; ok = advance() {
		if skipped < offset {
			skipped++
			continue
		}
		if len(values) >= limit {
			break
		}
		v := make([]byte, len(iter.Value()))
		copy(v, iter.Value())
		values = append(values, v)
	}
	if err := iter.Error(); err != nil {
		return nil, 0, err
	}
	return values, total, nil
}

func autoIncrementKey(prefix string) string {
	return "auto_increment_" + prefix
}

// NextID reads the last id issued for the record family and returns the
// next one. Ids start at 1.
func NextID(db *leveldb.DB, prefix string) (uint64, error) {
	data, err := db.Get([]byte(autoIncrementKey(prefix)), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return 1, nil
		}
		return 0, err
	}
	return BytesToUint64(data) + 1, nil
}

// LastID returns the most recently issued id, zero when none was issued.
func (l *LDB) LastID(prefix string) (uint64, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	next, err := NextID(l.DB, prefix)
	if err != nil {
		return 0, err
	}
	return next - 1, nil
}

func storeRecordWithAutoID(db *leveldb.DB, batch *leveldb.Batch, record types.DbRecordAutoId) error {
	nextID, err := NextID(db, record.Prefix())
	if err != nil {
		return err
	}
	record.SetId(nextID)

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	batch.Put([]byte(record.Key()), data)
	batch.Put([]byte(autoIncrementKey(record.Prefix())), Uint64ToBytes(nextID))
	return nil
}

// StoreRecord stages record into batch. Records implementing
// DbRecordAutoId get the next id of their family assigned first; the id
// counter is staged in the same batch so it commits atomically with the
// record.
func StoreRecord(db *leveldb.DB, batch *leveldb.Batch, record types.DbRecord) error {
	if auto, ok := record.(types.DbRecordAutoId); ok {
		return storeRecordWithAutoID(db, batch, auto)
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	batch.Put([]byte(record.Key()), data)
	return nil
}

// UpdateRecord stages record under its existing key without touching the
// id counter. Use this to rewrite a record that already holds its id.
func UpdateRecord(batch *leveldb.Batch, record types.DbRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	batch.Put([]byte(record.Key()), data)
	return nil
}

// DeleteRecord stages removal of record's key into batch.
func DeleteRecord(batch *leveldb.Batch, record types.DbRecord) {
	batch.Delete([]byte(record.Key()))
}
