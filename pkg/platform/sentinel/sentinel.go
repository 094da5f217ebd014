package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: row does not exist in the store
// - ErrConflict: duplicate key or a registration racing plan capacity
// - ErrInvalidState: entity in the wrong status for the requested transition
//   (e.g. marking a CANCELLED queue entry as SENT)
// - ErrUnavailable: database, redis, or SMTP temporarily unreachable
//
// For bad-input errors use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
