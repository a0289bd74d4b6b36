package ledger

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"

	"stake-ledger/auth"
	"stake-ledger/db"
	"stake-ledger/events"
	"stake-ledger/types"
)

// Registry operations. Project and duration administration needs the
// manager tier; fee configuration needs the owner tier. Each operation
// checks the capability once at entry and commits its record plus the
// in-memory mirror as one unit. Events publish after the mutex is
// released, like the lifecycle path, so a subscriber may query the
// ledger.

func (l *Ledger) RegisterProject(caller, projectID, assetID string) error {
	if !l.authz.HasCapability(caller, auth.CapManager) {
		return types.ErrUnauthorized
	}
	l.mu.Lock()
	if l.inFlight {
		l.mu.Unlock()
		return types.ErrReentrantCall
	}
	if p, ok := l.projects[projectID]; ok && p.Registered {
		l.mu.Unlock()
		return errors.Wrapf(types.ErrAlreadyRegistered, "project %s", projectID)
	}
	if assetID == "" {
		l.mu.Unlock()
		return types.ErrInvalidAsset
	}

	p := &types.Project{ProjectID: projectID, AssetID: assetID, Registered: true}
	if err := l.persist(p); err != nil {
		l.mu.Unlock()
		return err
	}
	l.projects[projectID] = p
	l.mu.Unlock()

	l.bus.Publish(events.ProjectRegistered{ProjectID: projectID})
	return nil
}

// UnregisterProject retires a project: the record stays (stakes against it
// remain queryable) but Registered flips off and the asset is cleared, so
// no stale read can admit a new stake.
func (l *Ledger) UnregisterProject(caller, projectID string) error {
	if !l.authz.HasCapability(caller, auth.CapManager) {
		return types.ErrUnauthorized
	}
	l.mu.Lock()
	if l.inFlight {
		l.mu.Unlock()
		return types.ErrReentrantCall
	}
	p, ok := l.projects[projectID]
	if !ok || !p.Registered {
		l.mu.Unlock()
		return errors.Wrapf(types.ErrNotRegistered, "project %s", projectID)
	}

	next := &types.Project{ProjectID: projectID, AssetID: "", Registered: false}
	if err := l.persist(next); err != nil {
		l.mu.Unlock()
		return err
	}
	l.projects[projectID] = next
	l.mu.Unlock()

	l.bus.Publish(events.ProjectUnregistered{ProjectID: projectID})
	return nil
}

// SetProjectAsset changes the asset of a registered project. Existing
// stakes keep the asset they snapshotted at creation.
func (l *Ledger) SetProjectAsset(caller, projectID, assetID string) error {
	if !l.authz.HasCapability(caller, auth.CapManager) {
		return types.ErrUnauthorized
	}
	l.mu.Lock()
	if l.inFlight {
		l.mu.Unlock()
		return types.ErrReentrantCall
	}
	p, ok := l.projects[projectID]
	if !ok || !p.Registered {
		l.mu.Unlock()
		return errors.Wrapf(types.ErrNotRegistered, "project %s", projectID)
	}
	if assetID == "" {
		l.mu.Unlock()
		return types.ErrInvalidAsset
	}

	next := &types.Project{ProjectID: projectID, AssetID: assetID, Registered: true}
	if err := l.persist(next); err != nil {
		l.mu.Unlock()
		return err
	}
	l.projects[projectID] = next
	l.mu.Unlock()

	l.bus.Publish(events.ProjectAssetSet{ProjectID: projectID, AssetID: assetID})
	return nil
}

func (l *Ledger) AddDuration(caller string, days int64) error {
	if !l.authz.HasCapability(caller, auth.CapManager) {
		return types.ErrUnauthorized
	}
	l.mu.Lock()
	if l.inFlight {
		l.mu.Unlock()
		return types.ErrReentrantCall
	}
	if days <= 0 {
		l.mu.Unlock()
		return errors.Wrapf(types.ErrInvalidDuration, "%d days", days)
	}
	if l.durations[days] {
		l.mu.Unlock()
		return errors.Wrapf(types.ErrDurationExists, "%d days", days)
	}

	if err := l.persist(&types.DurationOption{Days: days}); err != nil {
		l.mu.Unlock()
		return err
	}
	l.durations[days] = true
	l.mu.Unlock()

	l.bus.Publish(events.DurationAdded{Days: days})
	return nil
}

// RemoveDuration stops new stakes from using days; stakes already created
// under it are untouched.
func (l *Ledger) RemoveDuration(caller string, days int64) error {
	if !l.authz.HasCapability(caller, auth.CapManager) {
		return types.ErrUnauthorized
	}
	l.mu.Lock()
	if l.inFlight {
		l.mu.Unlock()
		return types.ErrReentrantCall
	}
	if !l.durations[days] {
		l.mu.Unlock()
		return errors.Wrapf(types.ErrDurationNotFound, "%d days", days)
	}

	err := l.ldb.Transaction(func(d *db.LDB, batch *leveldb.Batch) error {
		db.DeleteRecord(batch, &types.DurationOption{Days: days})
		return nil
	})
	if err != nil {
		l.mu.Unlock()
		return errors.Wrap(err, "persist duration removal")
	}
	delete(l.durations, days)
	l.mu.Unlock()

	l.bus.Publish(events.DurationRemoved{Days: days})
	return nil
}

func (l *Ledger) SetFeeRate(caller string, kind types.FeeKind, rate uint32) error {
	if !l.authz.HasCapability(caller, auth.CapOwner) {
		return types.ErrUnauthorized
	}
	l.mu.Lock()
	if l.inFlight {
		l.mu.Unlock()
		return types.ErrReentrantCall
	}
	if rate > types.FeeRateDenom {
		l.mu.Unlock()
		return errors.Wrapf(types.ErrFeeRateOutOfRange, "rate %d", rate)
	}

	next := l.fees
	if kind == types.FeeEmergency {
		next.EmergencyRate = rate
	} else {
		next.StandardRate = rate
	}
	if err := l.persist(&next); err != nil {
		l.mu.Unlock()
		return err
	}
	l.fees = next
	l.mu.Unlock()

	l.bus.Publish(events.FeeRateSet{Kind: kind.String(), Rate: rate})
	return nil
}

func (l *Ledger) SetFeeRecipient(caller, recipient string) error {
	if !l.authz.HasCapability(caller, auth.CapOwner) {
		return types.ErrUnauthorized
	}
	l.mu.Lock()
	if l.inFlight {
		l.mu.Unlock()
		return types.ErrReentrantCall
	}
	if recipient == "" {
		l.mu.Unlock()
		return types.ErrInvalidRecipient
	}

	next := l.fees
	next.Recipient = recipient
	if err := l.persist(&next); err != nil {
		l.mu.Unlock()
		return err
	}
	l.fees = next
	l.mu.Unlock()

	l.bus.Publish(events.FeeRecipientSet{Recipient: recipient})
	return nil
}

func (l *Ledger) persist(record types.DbRecord) error {
	err := l.ldb.Transaction(func(d *db.LDB, batch *leveldb.Batch) error {
		return db.UpdateRecord(batch, record)
	})
	return errors.Wrap(err, "persist record")
}
