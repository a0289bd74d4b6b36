package ledger

import (
	sdkmath "cosmossdk.io/math"

	"stake-ledger/types"
)

// ComputeFee splits gross by a basis-point rate: fee = floor(gross*rate/10000),
// net = gross - fee. The multiply goes through sdkmath.Int so a max-uint64
// gross cannot overflow. rate must already be validated to [0, 10000].
func ComputeFee(gross uint64, rate uint32) (fee, net uint64) {
	if rate == 0 || gross == 0 {
		return 0, gross
	}
	fee = sdkmath.NewIntFromUint64(gross).
		MulRaw(int64(rate)).
		QuoRaw(types.FeeRateDenom).
		Uint64()
	return fee, gross - fee
}
