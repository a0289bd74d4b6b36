package types

import "errors"

// Every failure of a mutating operation is one of these kinds. Callers
// match with errors.Is; wrapped context never changes the kind.
var (
	ErrUnauthorized = errors.New("caller lacks required capability")

	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDuration   = errors.New("invalid duration")
	ErrInvalidAsset      = errors.New("invalid asset")
	ErrInvalidRecipient  = errors.New("invalid recipient")
	ErrFeeRateOutOfRange = errors.New("fee rate out of range")

	ErrAlreadyRegistered    = errors.New("project already registered")
	ErrNotRegistered        = errors.New("project not registered")
	ErrProjectNotRegistered = errors.New("project not registered for staking")
	ErrAssetNotConfigured   = errors.New("project asset not configured")
	ErrDurationExists       = errors.New("duration already allowed")
	ErrDurationNotFound     = errors.New("duration not allowed")

	// ErrNotOwner deliberately covers both a missing stake id and a stake
	// owned by someone else, so callers cannot probe for existence.
	ErrNotOwner       = errors.New("stake not found or not owned by caller")
	ErrStakeNotActive = errors.New("stake is not active")
	ErrStillLocked    = errors.New("stake is still locked")

	ErrTransferFailed = errors.New("asset transfer failed")

	// ErrReentrantCall rejects a mutating call made while another mutating
	// call is still in flight (for example from inside a credit callback).
	ErrReentrantCall = errors.New("reentrant call rejected")
)
