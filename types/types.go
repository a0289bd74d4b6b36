package types

import (
	"fmt"
	"time"
)

type StakeStatus uint8

const (
	StatusActive StakeStatus = iota
	StatusUnstaked
	StatusEmergencyUnstaked
)

func (s StakeStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusUnstaked:
		return "unstaked"
	case StatusEmergencyUnstaked:
		return "emergency_unstaked"
	}
	return fmt.Sprintf("unknown(%d)", uint8(s))
}

type FeeKind uint8

const (
	FeeStandard FeeKind = iota
	FeeEmergency
)

func (k FeeKind) String() string {
	if k == FeeEmergency {
		return "emergency"
	}
	return "standard"
}

// FeeRateDenom is the denominator of fee rates: rates are expressed in
// parts per ten thousand (basis points).
const FeeRateDenom = 10000

type DbRecord interface {
	Key() string
}

type DbRecordAutoId interface {
	DbRecord
	Prefix() string
	SetId(uint64)
}

// Stake is the authoritative record of a single deposit. Amount is the
// quantity actually received into custody, which can be less than the
// amount the depositor requested if the asset applies its own
// transfer-time deduction.
type Stake struct {
	ID        uint64
	Owner     string
	Amount    uint64
	ProjectID string
	AssetID   string
	Duration  int64 // lock length in days
	CreatedAt time.Time
	UnlockAt  time.Time
	Status    StakeStatus
}

func (s *Stake) Key() string {
	// zero padded so lexicographic iteration follows id order
	return fmt.Sprintf("Stake_%020d", s.ID)
}

func (s *Stake) Prefix() string {
	return "Stake_"
}

func (s *Stake) SetId(id uint64) {
	s.ID = id
}

func (s *Stake) Clone() *Stake {
	c := *s
	return &c
}

type Project struct {
	ProjectID  string
	AssetID    string
	Registered bool
}

func (p *Project) Key() string {
	return fmt.Sprintf("Project_%s", p.ProjectID)
}

func (p *Project) Prefix() string {
	return "Project_"
}

type DurationOption struct {
	Days int64
}

func (d *DurationOption) Key() string {
	return fmt.Sprintf("Duration_%d", d.Days)
}

func (d *DurationOption) Prefix() string {
	return "Duration_"
}

// FeeConfig holds the two exit fee rates (basis points) and the identity
// paid the fee leg. An empty Recipient means the fee leg is skipped and
// the full gross amount goes back to the depositor.
type FeeConfig struct {
	StandardRate  uint32
	EmergencyRate uint32
	Recipient     string
}

func (f *FeeConfig) Key() string {
	return "FeeConfig"
}

func (f *FeeConfig) RateFor(kind FeeKind) uint32 {
	if kind == FeeEmergency {
		return f.EmergencyRate
	}
	return f.StandardRate
}

// StakeSnapshot is a point-in-time record of a project's total Active
// amount, written by the snapshot cron job. Amount is a decimal string:
// a sum of uint64 stakes can exceed uint64.
type StakeSnapshot struct {
	ID        uint64
	ProjectID string
	Amount    string
	Time      time.Time
}

func (s *StakeSnapshot) Key() string {
	return fmt.Sprintf("StakeSnapshot_%s_%020d", s.ProjectID, s.ID)
}

func (s *StakeSnapshot) Prefix() string {
	return fmt.Sprintf("StakeSnapshot_%s_", s.ProjectID)
}

func (s *StakeSnapshot) SetId(id uint64) {
	s.ID = id
}
