package util

import (
	"os"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"stake-ledger/types"
)

func LoadConfig(path string, config interface{}) {
	buf, err := os.ReadFile(path)
	if err != nil {
		logrus.WithFields(logrus.Fields{"err": err, "path": path}).Fatal("fail to read config")
	}

	if err = yaml.Unmarshal(buf, config); err != nil {
		logrus.WithField("err", err).Fatal("fail to parse config yaml")
	}
}

// RateToPercent renders a basis-point fee rate as a percentage string,
// e.g. 100 -> "1", 550 -> "5.5".
func RateToPercent(rate uint32) string {
	return decimal.New(int64(rate), 0).
		Div(decimal.New(types.FeeRateDenom/100, 0)).
		String()
}
