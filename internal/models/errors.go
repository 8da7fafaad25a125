package models

import (
	"errors"
	"fmt"
)

// Error taxonomy. Specific errors wrap their category so callers can match
// either level with errors.Is.
var (
	ErrInvalidParameter       = errors.New("invalid parameter")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrBalanceTooHigh         = errors.New("balance too high to claim free coins")
	ErrCooldownActive         = errors.New("free coins cooldown active")
	ErrRecipientNotFound      = errors.New("recipient not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrStoreUnavailable       = errors.New("store unavailable")
	ErrUpdateConflict         = errors.New("update conflict")

	ErrSelfTransfer       = fmt.Errorf("%w: cannot transfer to yourself", ErrInvalidParameter)
	ErrRoundActive        = fmt.Errorf("%w: a round of this game is already active", ErrInvalidStateTransition)
	ErrCashoutUnsupported = fmt.Errorf("%w: this game has no cash out", ErrInvalidStateTransition)
	ErrActionInProgress   = fmt.Errorf("%w: another action on this round is in progress", ErrUpdateConflict)
	ErrRoundNotFound      = errors.New("round not found")

	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionInvalid     = errors.New("session expired or invalid")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrMaintenance        = errors.New("maintenance in progress")
)

func InvalidParameter(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

func InvalidTransition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidStateTransition, fmt.Sprintf(format, args...))
}
