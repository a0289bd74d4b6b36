package ledger

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"

	"stake-ledger/asset"
	"stake-ledger/auth"
	"stake-ledger/db"
	"stake-ledger/events"
	"stake-ledger/logger"
	"stake-ledger/types"
	"stake-ledger/util/clock"
)

type CloseMode uint8

const (
	CloseStandard CloseMode = iota
	CloseEmergency
)

// Ledger owns every stake record plus the per-user and per-project id
// indices, and enforces the stake lifecycle: a stake is created Active and
// leaves Active exactly once, to exactly one terminal status.
//
// All mutating operations run under one mutex. External transfer legs run
// outside the mutex with the inFlight flag set; while it is set every
// other mutating call is rejected, so a programmable transfer recipient
// cannot re-enter the system mid-operation. State changes stage in memory
// first and only persist after every transfer leg has succeeded; a failed
// leg reverts the staged change, so either everything commits or nothing
// does.
type Ledger struct {
	mu       sync.Mutex
	inFlight bool

	// pendingClose points at the stake whose terminal status is staged but
	// not yet committed. Read paths report it as Active until the commit
	// lands; the staged status reverts if a transfer leg or the commit
	// fails.
	pendingClose *types.Stake

	ldb   *db.LDB
	asset asset.Ledger
	authz auth.Authorizer
	clock clock.Clock
	bus   *events.Bus

	projects  map[string]*types.Project
	durations map[int64]bool
	fees      types.FeeConfig

	stakes       map[uint64]*types.Stake
	userIndex    map[string][]uint64
	projectIndex map[string][]uint64
}

func New(ldb *db.LDB, assetLedger asset.Ledger, authz auth.Authorizer, clk clock.Clock, bus *events.Bus) (*Ledger, error) {
	l := &Ledger{
		ldb:          ldb,
		asset:        assetLedger,
		authz:        authz,
		clock:        clk,
		bus:          bus,
		projects:     make(map[string]*types.Project),
		durations:    make(map[int64]bool),
		stakes:       make(map[uint64]*types.Stake),
		userIndex:    make(map[string][]uint64),
		projectIndex: make(map[string][]uint64),
	}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l, nil
}

// load rebuilds all in-memory state from the store. The stake key is zero
// padded, so the prefix walk yields records in id order and the indices
// come back in creation order.
func (l *Ledger) load() error {
	if _, err := l.ldb.GetRecord(&l.fees); err != nil {
		return errors.Wrap(err, "load fee config")
	}

	err := l.ldb.IterPrefix((&types.Project{}).Prefix(), func(value []byte) error {
		p := &types.Project{}
		if err := json.Unmarshal(value, p); err != nil {
			return err
		}
		l.projects[p.ProjectID] = p
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "load projects")
	}

	err = l.ldb.IterPrefix((&types.DurationOption{}).Prefix(), func(value []byte) error {
		d := &types.DurationOption{}
		if err := json.Unmarshal(value, d); err != nil {
			return err
		}
		l.durations[d.Days] = true
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "load durations")
	}

	err = l.ldb.IterPrefix((&types.Stake{}).Prefix(), func(value []byte) error {
		st := &types.Stake{}
		if err := json.Unmarshal(value, st); err != nil {
			return err
		}
		l.stakes[st.ID] = st
		l.userIndex[st.Owner] = append(l.userIndex[st.Owner], st.ID)
		l.projectIndex[st.ProjectID] = append(l.projectIndex[st.ProjectID], st.ID)
		return nil
	})
	return errors.Wrap(err, "load stakes")
}

// OpenStake locks amount of the project's asset for the given duration.
// The recorded stake amount is the custody balance delta observed around
// the debit, not the requested amount.
func (l *Ledger) OpenStake(owner string, amount uint64, durationDays int64, projectID string) (*types.Stake, error) {
	l.mu.Lock()
	if l.inFlight {
		l.mu.Unlock()
		return nil, types.ErrReentrantCall
	}
	if amount == 0 {
		l.mu.Unlock()
		return nil, types.ErrInvalidAmount
	}
	if !l.durations[durationDays] {
		l.mu.Unlock()
		return nil, errors.Wrapf(types.ErrInvalidDuration, "%d days", durationDays)
	}
	p, ok := l.projects[projectID]
	if !ok || !p.Registered {
		l.mu.Unlock()
		return nil, errors.Wrapf(types.ErrProjectNotRegistered, "project %s", projectID)
	}
	if p.AssetID == "" {
		l.mu.Unlock()
		return nil, errors.Wrapf(types.ErrAssetNotConfigured, "project %s", projectID)
	}
	assetID := p.AssetID
	l.inFlight = true
	l.mu.Unlock()

	credited, err := l.debitObserved(assetID, owner, amount)
	if err != nil {
		l.abort()
		return nil, errors.Wrap(types.ErrTransferFailed, err.Error())
	}

	l.mu.Lock()
	now := l.clock.Now()
	st := &types.Stake{
		Owner:     owner,
		Amount:    credited,
		ProjectID: projectID,
		AssetID:   assetID,
		Duration:  durationDays,
		CreatedAt: now,
		UnlockAt:  now.Add(time.Duration(durationDays) * 24 * time.Hour),
		Status:    types.StatusActive,
	}
	err = l.ldb.Transaction(func(d *db.LDB, batch *leveldb.Batch) error {
		return db.StoreRecord(d.DB, batch, st)
	})
	if err != nil {
		l.inFlight = false
		l.mu.Unlock()
		// value is already in custody; push it back before failing
		if cerr := l.asset.Credit(assetID, owner, credited); cerr != nil {
			logger.Logger.Errorf("refund after failed stake persist: stake owner %s amount %d: %v", owner, credited, cerr)
		}
		return nil, errors.Wrap(err, "persist stake")
	}
	l.stakes[st.ID] = st
	l.userIndex[owner] = append(l.userIndex[owner], st.ID)
	l.projectIndex[projectID] = append(l.projectIndex[projectID], st.ID)
	l.inFlight = false
	l.mu.Unlock()

	l.bus.Publish(events.Staked{
		StakeID:   st.ID,
		Owner:     owner,
		NetAmount: credited,
		ProjectID: projectID,
		Duration:  durationDays,
	})
	return st.Clone(), nil
}

// debitObserved moves amount into custody and reports the custody balance
// delta, which is what the stake is credited with.
func (l *Ledger) debitObserved(assetID, from string, amount uint64) (uint64, error) {
	before, err := l.asset.CustodyBalance(assetID)
	if err != nil {
		return 0, err
	}
	if _, err := l.asset.Debit(assetID, from, amount); err != nil {
		return 0, err
	}
	after, err := l.asset.CustodyBalance(assetID)
	if err != nil {
		return 0, err
	}
	return after - before, nil
}

// CloseStake exits a stake in full, exactly once. Standard mode requires
// the lock to have expired; emergency mode is allowed any time while the
// stake is Active and pays the higher fee. The status flips before any
// transfer leg runs, so a nested close of the same stake fails
// StakeNotActive while the first close is in flight; queries keep
// reporting the stake as Active until the close commits.
func (l *Ledger) CloseStake(stakeID uint64, caller string, mode CloseMode) error {
	l.mu.Lock()
	st, ok := l.stakes[stakeID]
	if !ok || st.Owner != caller {
		l.mu.Unlock()
		return types.ErrNotOwner
	}
	if st.Status != types.StatusActive {
		l.mu.Unlock()
		return errors.Wrapf(types.ErrStakeNotActive, "stake %d is %s", stakeID, st.Status)
	}
	if l.inFlight {
		l.mu.Unlock()
		return types.ErrReentrantCall
	}
	if mode == CloseStandard && l.clock.Now().Before(st.UnlockAt) {
		l.mu.Unlock()
		return errors.Wrapf(types.ErrStillLocked, "stake %d unlocks at %s", stakeID, st.UnlockAt)
	}

	terminal := types.StatusUnstaked
	rate := l.fees.StandardRate
	if mode == CloseEmergency {
		terminal = types.StatusEmergencyUnstaked
		rate = l.fees.EmergencyRate
	}
	recipient := l.fees.Recipient
	gross := st.Amount
	assetID := st.AssetID

	st.Status = terminal
	l.pendingClose = st
	l.inFlight = true
	l.mu.Unlock()

	fee, net := ComputeFee(gross, rate)
	payFee := fee > 0 && recipient != ""

	if payFee {
		if err := l.asset.Credit(assetID, recipient, fee); err != nil {
			l.revert(st)
			return errors.Wrap(types.ErrTransferFailed, err.Error())
		}
	} else {
		// without a configured recipient the fee stays with the depositor
		net = gross
	}

	if err := l.asset.Credit(assetID, caller, net); err != nil {
		if payFee {
			if _, derr := l.asset.Debit(assetID, recipient, fee); derr != nil {
				logger.Logger.Errorf("claw back fee leg for stake %d: %v", stakeID, derr)
			}
		}
		l.revert(st)
		return errors.Wrap(types.ErrTransferFailed, err.Error())
	}

	l.mu.Lock()
	err := l.ldb.Transaction(func(d *db.LDB, batch *leveldb.Batch) error {
		return db.UpdateRecord(batch, st)
	})
	if err != nil {
		l.mu.Unlock()
		logger.Logger.Errorf("persist close of stake %d: %v", stakeID, err)
		// both legs already paid out; claw them back, the stake stays Active
		if _, derr := l.asset.Debit(assetID, caller, net); derr != nil {
			logger.Logger.Errorf("claw back payout for stake %d: %v", stakeID, derr)
		}
		if payFee {
			if _, derr := l.asset.Debit(assetID, recipient, fee); derr != nil {
				logger.Logger.Errorf("claw back fee leg for stake %d: %v", stakeID, derr)
			}
		}
		l.revert(st)
		return errors.Wrap(err, "persist close")
	}
	l.pendingClose = nil
	l.inFlight = false
	l.mu.Unlock()

	if mode == CloseEmergency {
		l.bus.Publish(events.EmergencyUnstaked{StakeID: stakeID, Owner: caller, GrossAmount: gross})
	} else {
		l.bus.Publish(events.Unstaked{StakeID: stakeID, Owner: caller, GrossAmount: gross})
	}
	return nil
}

func (l *Ledger) abort() {
	l.mu.Lock()
	l.inFlight = false
	l.mu.Unlock()
}

func (l *Ledger) revert(st *types.Stake) {
	l.mu.Lock()
	st.Status = types.StatusActive
	l.pendingClose = nil
	l.inFlight = false
	l.mu.Unlock()
}

// GetStake returns a copy of the stake record, or nil when unknown. A
// stake whose close is in flight still reads as Active.
func (l *Ledger) GetStake(id uint64) *types.Stake {
	l.mu.Lock()
	defer l.mu.Unlock()
	st, ok := l.stakes[id]
	if !ok {
		return nil
	}
	out := st.Clone()
	if st == l.pendingClose {
		out.Status = types.StatusActive
	}
	return out
}

// UserStakeIDs returns every stake id ever created by owner, in creation
// order.
func (l *Ledger) UserStakeIDs(owner string) []uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]uint64(nil), l.userIndex[owner]...)
}

// ProjectStakeIDs returns every stake id ever created against projectID,
// in creation order.
func (l *Ledger) ProjectStakeIDs(projectID string) []uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]uint64(nil), l.projectIndex[projectID]...)
}

// ActiveUserStakeIDs filters UserStakeIDs by the authoritative status
// field on read; there is no separately maintained active set to drift.
func (l *Ledger) ActiveUserStakeIDs(owner string) []uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	var ids []uint64
	for _, id := range l.userIndex[owner] {
		if st := l.stakes[id]; st.Status == types.StatusActive || st == l.pendingClose {
			ids = append(ids, id)
		}
	}
	return ids
}

// ProjectActiveTotals sums the Active amounts per project, as decimal
// strings. The snapshot job records these.
func (l *Ledger) ProjectActiveTotals() map[string]string {
	l.mu.Lock()
	defer l.mu.Unlock()

	totals := make(map[string]string)
	for projectID, ids := range l.projectIndex {
		total := sdkmath.ZeroInt()
		for _, id := range ids {
			if st := l.stakes[id]; st.Status == types.StatusActive || st == l.pendingClose {
				total = total.Add(sdkmath.NewIntFromUint64(st.Amount))
			}
		}
		totals[projectID] = total.String()
	}
	return totals
}

// Projects returns the registered and formerly registered projects,
// ordered by id.
func (l *Ledger) Projects() []types.Project {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.Project, 0, len(l.projects))
	for _, p := range l.projects {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectID < out[j].ProjectID })
	return out
}

// Durations returns the allowed lock durations in ascending order.
func (l *Ledger) Durations() []int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]int64, 0, len(l.durations))
	for d := range l.durations {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FeeConfig returns the current fee configuration.
func (l *Ledger) FeeConfig() types.FeeConfig {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fees
}
