package ledger

import (
	"math"
	"testing"
)

func TestComputeFee(t *testing.T) {
	cases := []struct {
		name  string
		gross uint64
		rate  uint32
		fee   uint64
	}{
		{"one percent", 1000, 100, 10},
		{"five percent", 10000, 500, 500},
		{"floors to zero", 9999, 1, 0},
		{"floors fraction", 1001, 100, 10},
		{"zero rate", 123456, 0, 0},
		{"zero gross", 0, 10000, 0},
		{"full rate", 777, 10000, 777},
		{"max gross full rate", math.MaxUint64, 10000, math.MaxUint64},
		{"max gross one bp", math.MaxUint64, 1, math.MaxUint64 / 10000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fee, net := ComputeFee(tc.gross, tc.rate)
			if fee != tc.fee {
				t.Errorf("fee = %d, want %d", fee, tc.fee)
			}
			if fee+net != tc.gross {
				t.Errorf("fee %d + net %d != gross %d", fee, net, tc.gross)
			}
		})
	}
}

func TestComputeFeeNeverExceedsGross(t *testing.T) {
	for _, gross := range []uint64{1, 9999, 10000, 10001, math.MaxUint64} {
		for _, rate := range []uint32{0, 1, 100, 9999, 10000} {
			fee, net := ComputeFee(gross, rate)
			if fee > gross {
				t.Errorf("gross %d rate %d: fee %d exceeds gross", gross, rate, fee)
			}
			if fee+net != gross {
				t.Errorf("gross %d rate %d: split does not add up", gross, rate)
			}
		}
	}
}
