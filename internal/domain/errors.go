package domain

import "errors"

var (
	// ErrInvalidCredentials is returned when no user matches the given
	// username/password pair.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrNotFound is returned when an operation targets an id that is
	// not in the store.
	ErrNotFound = errors.New("not found")
	// ErrNoSyncURL is returned by manual sync when no endpoint is configured.
	ErrNoSyncURL = errors.New("no sync url configured")
	// ErrBadRemotePayload indicates the remote body did not decode into
	// an aggregate carrying users or questions.
	ErrBadRemotePayload = errors.New("remote payload is not a store aggregate")
)
