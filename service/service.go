package service

import (
	"encoding/json"

	"stake-ledger/db"
	"stake-ledger/ledger"
	"stake-ledger/types"
)

type IService interface {
	GetStake(id uint64) *types.Stake
	GetUserStakes(owner string) []*types.Stake
	GetActiveUserStakes(owner string) []*types.Stake
	GetProjectStakes(projectID string) []*types.Stake
	GetRegistry() *RegistryView
	GetSnapshots(projectID string, limit, offset int) ([]*types.StakeSnapshot, int, error)

	Stake(owner string, amount uint64, durationDays int64, projectID string) (*types.Stake, error)
	Unstake(stakeID uint64, caller string) error
	EmergencyUnstake(stakeID uint64, caller string) error

	RegisterProject(caller, projectID, assetID string) error
	UnregisterProject(caller, projectID string) error
	SetProjectAsset(caller, projectID, assetID string) error
	AddDuration(caller string, days int64) error
	RemoveDuration(caller string, days int64) error
	SetFeeRate(caller string, kind types.FeeKind, rate uint32) error
	SetFeeRecipient(caller, recipient string) error
}

type RegistryView struct {
	Projects      []types.Project
	Durations     []int64
	StandardRate  uint32
	EmergencyRate uint32
	FeeRecipient  string
}

type Service struct {
	ldb    *db.LDB
	ledger *ledger.Ledger
}

func NewService(ldb *db.LDB, l *ledger.Ledger) *Service {
	return &Service{ldb: ldb, ledger: l}
}

func (s *Service) GetStake(id uint64) *types.Stake {
	return s.ledger.GetStake(id)
}

func (s *Service) GetUserStakes(owner string) []*types.Stake {
	return s.resolve(s.ledger.UserStakeIDs(owner))
}

func (s *Service) GetActiveUserStakes(owner string) []*types.Stake {
	return s.resolve(s.ledger.ActiveUserStakeIDs(owner))
}

func (s *Service) GetProjectStakes(projectID string) []*types.Stake {
	return s.resolve(s.ledger.ProjectStakeIDs(projectID))
}

func (s *Service) resolve(ids []uint64) []*types.Stake {
	stakes := make([]*types.Stake, 0, len(ids))
	for _, id := range ids {
		if st := s.ledger.GetStake(id); st != nil {
			stakes = append(stakes, st)
		}
	}
	return stakes
}

func (s *Service) GetRegistry() *RegistryView {
	fees := s.ledger.FeeConfig()
	return &RegistryView{
		Projects:      s.ledger.Projects(),
		Durations:     s.ledger.Durations(),
		StandardRate:  fees.StandardRate,
		EmergencyRate: fees.EmergencyRate,
		FeeRecipient:  fees.Recipient,
	}
}

func (s *Service) GetSnapshots(projectID string, limit, offset int) ([]*types.StakeSnapshot, int, error) {
	prefix := (&types.StakeSnapshot{ProjectID: projectID}).Prefix()
	values, total, err := s.ldb.IterPage(prefix, limit, offset, false)
	if err != nil {
		return nil, 0, err
	}
	snapshots := make([]*types.StakeSnapshot, 0, len(values))
	for _, v := range values {
		snap := &types.StakeSnapshot{}
		if err := json.Unmarshal(v, snap); err != nil {
			return nil, 0, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, total, nil
}

func (s *Service) Stake(owner string, amount uint64, durationDays int64, projectID string) (*types.Stake, error) {
	return s.ledger.OpenStake(owner, amount, durationDays, projectID)
}

func (s *Service) Unstake(stakeID uint64, caller string) error {
	return s.ledger.CloseStake(stakeID, caller, ledger.CloseStandard)
}

func (s *Service) EmergencyUnstake(stakeID uint64, caller string) error {
	return s.ledger.CloseStake(stakeID, caller, ledger.CloseEmergency)
}

func (s *Service) RegisterProject(caller, projectID, assetID string) error {
	return s.ledger.RegisterProject(caller, projectID, assetID)
}

func (s *Service) UnregisterProject(caller, projectID string) error {
	return s.ledger.UnregisterProject(caller, projectID)
}

func (s *Service) SetProjectAsset(caller, projectID, assetID string) error {
	return s.ledger.SetProjectAsset(caller, projectID, assetID)
}

func (s *Service) AddDuration(caller string, days int64) error {
	return s.ledger.AddDuration(caller, days)
}

func (s *Service) RemoveDuration(caller string, days int64) error {
	return s.ledger.RemoveDuration(caller, days)
}

func (s *Service) SetFeeRate(caller string, kind types.FeeKind, rate uint32) error {
	return s.ledger.SetFeeRate(caller, kind, rate)
}

func (s *Service) SetFeeRecipient(caller, recipient string) error {
	return s.ledger.SetFeeRecipient(caller, recipient)
}
