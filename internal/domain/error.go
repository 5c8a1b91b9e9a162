package domain

import "errors"

var (
	// Common domain errors
	ErrInvalidMangoEntity      = errors.New("entity has no valid mango pay id")
	ErrSessionNotFound         = errors.New("registration session not found")
	ErrBadMangoReturn          = errors.New("card registration not found in mango service")
	ErrSessionAlreadyFinalized = errors.New("registration session already finalized")
	ErrSessionLocked           = errors.New("registration session is being processed")
	ErrInvalidArgument         = errors.New("invalid argument")
	ErrOperationFailed         = errors.New("operation failed")
)
