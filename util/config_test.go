package util

import "testing"

func TestRateToPercent(t *testing.T) {
	cases := map[uint32]string{
		0:     "0",
		1:     "0.01",
		100:   "1",
		550:   "5.5",
		10000: "100",
	}
	for rate, want := range cases {
		if got := RateToPercent(rate); got != want {
			t.Errorf("RateToPercent(%d) = %s, want %s", rate, got, want)
		}
	}
}
