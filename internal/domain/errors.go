package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInvalidState          = errors.New("invalid state")
	ErrUnsupportedMethod     = errors.New("unsupported payment method")
	ErrProcessingInterrupted = errors.New("payment processing interrupted")
	ErrConflict              = errors.New("conflict")
	ErrInvalidArgument       = errors.New("invalid argument")

	// ErrAlreadyCancelled is an ErrInvalidState as well.
	ErrAlreadyCancelled = fmt.Errorf("%w: booking already cancelled", ErrInvalidState)
)
