package main

import (
	"flag"
	"fmt"
	"net/http"

	"stake-ledger/asset"
	"stake-ledger/auth"
	"stake-ledger/config"
	"stake-ledger/cornjob"
	"stake-ledger/db"
	"stake-ledger/events"
	"stake-ledger/ledger"
	"stake-ledger/logger"
	"stake-ledger/router"
	"stake-ledger/service"
	"stake-ledger/types"
	"stake-ledger/util"
	"stake-ledger/util/clock"
)

var (
	configFlag = flag.String("config", "config.yaml", "Config file")
)

func main() {
	flag.Parse()
	util.LoadConfig(*configFlag, &config.Cfg)
	cfg := &config.Cfg

	var ldb *db.LDB
	if cfg.MemDb {
		ldb = db.NewMemLdb()
	} else {
		var err error
		ldb, err = db.NewLdb(cfg.DbTailFix)
		if err != nil {
			logger.Logger.Fatalf("open db: %v", err)
		}
	}
	defer ldb.Close()

	bus := events.NewBus()
	bus.Subscribe(func(e events.Event) {
		logger.Logger.Infof("event %s: %+v", e.EventName(), e)
	})

	authz := auth.NewStatic(cfg.Owner, cfg.Managers...)
	assetLedger := asset.NewMemLedger()
	clk := clock.System{}

	l, err := ledger.New(ldb, assetLedger, authz, clk, bus)
	if err != nil {
		logger.Logger.Fatalf("load ledger: %v", err)
	}

	seedFees(l, cfg)

	newService := service.NewService(ldb, l)
	engine := router.Init(newService)
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)

	c := cornjob.CronJobLedgerInit(ldb, l, clk, cfg.SnapshotSpec)
	defer c.Stop()

	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Logger.Fatalf("listen addr:%s,err:%v", addr, err)
	}
}

// seedFees applies the configured fee parameters on a fresh store. Once
// anything is persisted the stored configuration wins.
func seedFees(l *ledger.Ledger, cfg *config.Conf) {
	fees := l.FeeConfig()
	if fees.Recipient != "" || fees.StandardRate != 0 || fees.EmergencyRate != 0 {
		return
	}
	if cfg.StandardFeeRate > 0 {
		if err := l.SetFeeRate(cfg.Owner, types.FeeStandard, cfg.StandardFeeRate); err != nil {
			logger.Logger.Fatalf("seed standard fee rate: %v", err)
		}
	}
	if cfg.EmergencyFeeRate > 0 {
		if err := l.SetFeeRate(cfg.Owner, types.FeeEmergency, cfg.EmergencyFeeRate); err != nil {
			logger.Logger.Fatalf("seed emergency fee rate: %v", err)
		}
	}
	if cfg.FeeRecipient != "" {
		if err := l.SetFeeRecipient(cfg.Owner, cfg.FeeRecipient); err != nil {
			logger.Logger.Fatalf("seed fee recipient: %v", err)
		}
	}
}
