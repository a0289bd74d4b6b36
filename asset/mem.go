package asset

import (
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/pkg/errors"

	"stake-ledger/types"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUnknownAsset        = errors.New("unknown asset")
)

// MemLedger is an in-process asset ledger with one custody bucket per
// asset. TaxRate (basis points) is deducted on every debit, modeling
// assets that take their own transfer-time cut. OnCredit, when set, runs
// after a successful credit; recipients in tests use it to simulate a
// programmable receiver calling back into the staking system.
type MemLedger struct {
	mu       sync.Mutex
	balances map[string]map[string]uint64
	custody  map[string]uint64

	TaxRate  uint32
	OnCredit func(assetID, to string, amount uint64)
}

func NewMemLedger() *MemLedger {
	return &MemLedger{
		balances: make(map[string]map[string]uint64),
		custody:  make(map[string]uint64),
	}
}

// Mint creates balance out of thin air, for wiring and tests.
func (m *MemLedger) Mint(assetID, account string, amount uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[assetID] == nil {
		m.balances[assetID] = make(map[string]uint64)
	}
	m.balances[assetID][account] += amount
}

func (m *MemLedger) BalanceOf(assetID, account string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[assetID][account]
}

func (m *MemLedger) CustodyBalance(assetID string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.custody[assetID], nil
}

func (m *MemLedger) Debit(assetID, from string, amount uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	accounts := m.balances[assetID]
	if accounts == nil {
		return 0, errors.Wrapf(ErrUnknownAsset, "asset %s", assetID)
	}
	if accounts[from] < amount {
		return 0, errors.Wrapf(ErrInsufficientBalance, "account %s", from)
	}
	accounts[from] -= amount

	moved := amount
	if m.TaxRate > 0 {
		tax := sdkmath.NewIntFromUint64(amount).
			MulRaw(int64(m.TaxRate)).
			QuoRaw(types.FeeRateDenom).
			Uint64()
		moved = amount - tax
	}
	m.custody[assetID] += moved
	return moved, nil
}

func (m *MemLedger) Credit(assetID, to string, amount uint64) error {
	m.mu.Lock()
	if m.custody[assetID] < amount {
		m.mu.Unlock()
		return errors.Wrapf(ErrInsufficientBalance, "custody of %s", assetID)
	}
	m.custody[assetID] -= amount
	if m.balances[assetID] == nil {
		m.balances[assetID] = make(map[string]uint64)
	}
	m.balances[assetID][to] += amount
	hook := m.OnCredit
	m.mu.Unlock()

	if hook != nil {
		hook(assetID, to, amount)
	}
	return nil
}
