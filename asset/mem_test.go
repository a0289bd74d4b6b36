package asset

import (
	"testing"

	"github.com/pkg/errors"
)

const (
	tokenA = "token-a"
	alice  = "alice"
	bob    = "bob"
)

func TestDebitCredit(t *testing.T) {
	m := NewMemLedger()
	m.Mint(tokenA, alice, 1000)

	moved, err := m.Debit(tokenA, alice, 400)
	if err != nil {
		t.Fatal(err)
	}
	if moved != 400 {
		t.Errorf("moved = %d, want 400", moved)
	}
	if m.BalanceOf(tokenA, alice) != 600 {
		t.Errorf("alice = %d", m.BalanceOf(tokenA, alice))
	}
	custody, _ := m.CustodyBalance(tokenA)
	if custody != 400 {
		t.Errorf("custody = %d", custody)
	}

	if err := m.Credit(tokenA, bob, 150); err != nil {
		t.Fatal(err)
	}
	if m.BalanceOf(tokenA, bob) != 150 {
		t.Errorf("bob = %d", m.BalanceOf(tokenA, bob))
	}
	custody, _ = m.CustodyBalance(tokenA)
	if custody != 250 {
		t.Errorf("custody = %d", custody)
	}
}

func TestDebitFailures(t *testing.T) {
	m := NewMemLedger()
	m.Mint(tokenA, alice, 100)

	if _, err := m.Debit("nosuch", alice, 10); !errors.Is(err, ErrUnknownAsset) {
		t.Errorf("unknown asset: %v", err)
	}
	if _, err := m.Debit(tokenA, alice, 101); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("overdraft: %v", err)
	}
	// failed debit moves nothing
	if m.BalanceOf(tokenA, alice) != 100 {
		t.Errorf("alice = %d after failed debit", m.BalanceOf(tokenA, alice))
	}
}

func TestCreditFailsOnEmptyCustody(t *testing.T) {
	m := NewMemLedger()
	if err := m.Credit(tokenA, bob, 1); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("credit from empty custody: %v", err)
	}
}

func TestTransferTaxFloors(t *testing.T) {
	m := NewMemLedger()
	m.TaxRate = 100 // 1%
	m.Mint(tokenA, alice, 100_000)

	moved, err := m.Debit(tokenA, alice, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if moved != 990 {
		t.Errorf("moved = %d, want 990", moved)
	}

	// tax floors to zero on tiny amounts
	moved, err = m.Debit(tokenA, alice, 99)
	if err != nil {
		t.Fatal(err)
	}
	if moved != 99 {
		t.Errorf("moved = %d, want untaxed 99", moved)
	}
	// sender always loses the full requested amount
	if got := m.BalanceOf(tokenA, alice); got != 100_000-1000-99 {
		t.Errorf("alice = %d", got)
	}
}

func TestOnCreditHook(t *testing.T) {
	m := NewMemLedger()
	m.Mint(tokenA, alice, 100)
	if _, err := m.Debit(tokenA, alice, 100); err != nil {
		t.Fatal(err)
	}

	var gotTo string
	var gotAmount uint64
	m.OnCredit = func(assetID, to string, amount uint64) {
		gotTo = to
		gotAmount = amount
		// the hook may call back into the ledger without deadlocking
		_ = m.BalanceOf(assetID, to)
	}
	if err := m.Credit(tokenA, bob, 60); err != nil {
		t.Fatal(err)
	}
	if gotTo != bob || gotAmount != 60 {
		t.Errorf("hook saw %s/%d", gotTo, gotAmount)
	}
}
