package auth

import "sync"

type Capability uint8

const (
	// CapOwner is the full-control tier: everything CapManager can do,
	// plus fee configuration and granting/revoking the manager tier.
	CapOwner Capability = iota
	// CapManager is the day-to-day configuration tier: project and
	// duration administration.
	CapManager
)

// Authorizer answers whether a principal holds a capability. The staking
// system checks it once at the top of every privileged operation and
// carries no role state of its own.
type Authorizer interface {
	HasCapability(principal string, c Capability) bool
}

// Static is an Authorizer with a fixed owner and a mutable manager set.
// The owner tier implies the manager tier.
type Static struct {
	mu       sync.RWMutex
	owner    string
	managers map[string]bool
}

func NewStatic(owner string, managers ...string) *Static {
	s := &Static{
		owner:    owner,
		managers: make(map[string]bool),
	}
	for _, m := range managers {
		s.managers[m] = true
	}
	return s
}

func (s *Static) HasCapability(principal string, c Capability) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if principal == s.owner && s.owner != "" {
		return true
	}
	return c == CapManager && s.managers[principal]
}

// Grant adds principal to the manager set. Only the owner may grant.
func (s *Static) Grant(caller, principal string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if caller != s.owner || s.owner == "" {
		return false
	}
	s.managers[principal] = true
	return true
}

// Revoke removes principal from the manager set. Only the owner may revoke.
func (s *Static) Revoke(caller, principal string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if caller != s.owner || s.owner == "" {
		return false
	}
	delete(s.managers, principal)
	return true
}
