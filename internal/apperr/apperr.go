package apperr

import (
	"errors"
	"fmt"
)

// Error categories surfaced by the service layer. Handlers map these to
// HTTP statuses with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidProof     = errors.New("invalid check-in proof")
	ErrTooFar           = errors.New("too far from vendor")
	ErrUnauthenticated  = errors.New("user not authenticated")
	ErrJourneyActive    = errors.New("a journey is already active")
	ErrJourneyNotActive = errors.New("journey is not active")
	ErrEmptyRoute       = errors.New("route has no stops")
	ErrBackend          = errors.New("backend failure")
)

// TooFarError carries the measured distance so the client can show it and
// offer a force-confirm retry.
type TooFarError struct {
	DistanceMiles  float64
	ThresholdMiles float64
}

func (e *TooFarError) Error() string {
	return fmt.Sprintf("too far from vendor: %.2f miles away (threshold %.2f)", e.DistanceMiles, e.ThresholdMiles)
}

func (e *TooFarError) Unwrap() error {
	return ErrTooFar
}
