package events

import "sync"

// One event is published per successful mutating call, in call order.
// Deposit events carry the net amount actually received into custody;
// exit events carry the gross pre-fee amount. The asymmetry is part of
// the compatibility contract and must not be normalized.

type Event interface {
	EventName() string
}

type ProjectRegistered struct {
	ProjectID string `json:"project_id"`
}

type ProjectUnregistered struct {
	ProjectID string `json:"project_id"`
}

type ProjectAssetSet struct {
	ProjectID string `json:"project_id"`
	AssetID   string `json:"asset_id"`
}

type DurationAdded struct {
	Days int64 `json:"days"`
}

type DurationRemoved struct {
	Days int64 `json:"days"`
}

type Staked struct {
	StakeID   uint64 `json:"stake_id"`
	Owner     string `json:"owner"`
	NetAmount uint64 `json:"net_amount"`
	ProjectID string `json:"project_id"`
	Duration  int64  `json:"duration"`
}

type Unstaked struct {
	StakeID     uint64 `json:"stake_id"`
	Owner       string `json:"owner"`
	GrossAmount uint64 `json:"gross_amount"`
}

type EmergencyUnstaked struct {
	StakeID     uint64 `json:"stake_id"`
	Owner       string `json:"owner"`
	GrossAmount uint64 `json:"gross_amount"`
}

type FeeRecipientSet struct {
	Recipient string `json:"recipient"`
}

type FeeRateSet struct {
	Kind string `json:"kind"`
	Rate uint32 `json:"rate"`
}

func (ProjectRegistered) EventName() string   { return "ProjectRegistered" }
func (ProjectUnregistered) EventName() string { return "ProjectUnregistered" }
func (ProjectAssetSet) EventName() string     { return "ProjectAssetSet" }
func (DurationAdded) EventName() string       { return "DurationAdded" }
func (DurationRemoved) EventName() string     { return "DurationRemoved" }
func (Staked) EventName() string              { return "Staked" }
func (Unstaked) EventName() string            { return "Unstaked" }
func (EmergencyUnstaked) EventName() string   { return "EmergencyUnstaked" }
func (FeeRecipientSet) EventName() string     { return "FeeRecipientSet" }
func (FeeRateSet) EventName() string          { return "FeeRateSet" }

// Bus delivers events to subscribers synchronously, in publish order.
// Publishers release their own locks first, so subscribers may query the
// publishing component; mutating it from a handler is still on the
// subscriber.
type Bus struct {
	mu   sync.Mutex
	subs []func(Event)
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	subs := make([]func(Event), len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, fn := range subs {
		fn(e)
	}
}
