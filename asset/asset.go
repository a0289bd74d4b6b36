package asset

// Ledger is the external fungible-asset ledger the staking system moves
// value through. Custody is the ledger-side account this system controls.
//
// Debit moves amount of assetID from from into custody and reports how
// much actually arrived (an asset may take its own cut in flight).
// Credit pays amount of assetID out of custody to to. Both either
// complete or fail synchronously; neither retries.
type Ledger interface {
	Debit(assetID, from string, amount uint64) (uint64, error)
	Credit(assetID, to string, amount uint64) error
	CustodyBalance(assetID string) (uint64, error)
}
