package config

var Cfg Conf

type Conf struct {
	Port      int    `yaml:"port"`
	DbTailFix string `yaml:"db_tail_fix"`
	// MemDb switches the store to leveldb memory storage (no durability).
	MemDb bool `yaml:"mem_db"`

	// Owner holds the full-control capability tier; Managers hold the
	// day-to-day configuration tier.
	Owner    string   `yaml:"owner"`
	Managers []string `yaml:"managers"`

	// Fee rates in basis points, applied at first boot only; afterwards
	// the persisted registry configuration wins.
	StandardFeeRate  uint32 `yaml:"standard_fee_rate"`
	EmergencyFeeRate uint32 `yaml:"emergency_fee_rate"`
	FeeRecipient     string `yaml:"fee_recipient"`

	// SnapshotSpec is the cron spec of the per-project active-total
	// snapshot job.
	SnapshotSpec string `yaml:"snapshot_spec"`
}
