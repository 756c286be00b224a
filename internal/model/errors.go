package model

import "errors"

// Error taxonomy shared by the ticket store, audit log and classification service.
// Callers match with errors.Is; producers wrap with fmt.Errorf("%w: ...").
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrStorage      = errors.New("storage failure")
	ErrRateLimited  = errors.New("rate limited")
)
