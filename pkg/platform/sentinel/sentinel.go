package sentinel

import "errors"

// Infrastructure facts returned (usually wrapped) by stores. Services translate
// them into domain error codes; they never reach the wire directly.
//
//   - ErrNotFound: no row/key for the lookup
//   - ErrConflict: a unique constraint rejected the write
//   - ErrExpired: the code/session/stash is past its expiry
//   - ErrAlreadyUsed: a single-use credential was already consumed
//   - ErrInvalidState: the entity exists but is disabled or mismatched
//   - ErrUnavailable: the backend could not be reached
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
