package lzapp

import "errors"

var (
	// ErrUnauthorized is returned when an owner-only operation is called by
	// any other account.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrZeroOwner is returned when ownership would pass to the zero address.
	ErrZeroOwner = errors.New("owner is the zero address")

	// ErrNotEndpoint is returned when the receive entry point is called by
	// anything but the configured endpoint.
	ErrNotEndpoint = errors.New("caller is not the endpoint")

	// ErrNotTrustedRemote is returned when a path is not the registered
	// remote of its chain, or when sending to a chain without one.
	ErrNotTrustedRemote = errors.New("not a trusted remote")

	// ErrNoTrustedPath is returned when reading the remote address of a chain
	// without a trusted remote.
	ErrNoTrustedPath = errors.New("no trusted path record")

	// ErrPrecrimeRejected is returned when the precrime validator does not
	// approve an inbound message.
	ErrPrecrimeRejected = errors.New("precrime rejected message")

	// ErrNoStoredMessage is returned when retrying a message with no pending
	// failure record.
	ErrNoStoredMessage = errors.New("no stored message")

	// ErrIncorrectPayloadHash is returned when a retried payload does not
	// hash to the stored record.
	ErrIncorrectPayloadHash = errors.New("incorrect payload hash")

	// ErrCallerNotThis is returned when the isolated receive entry point is
	// called by anything but the application itself.
	ErrCallerNotThis = errors.New("caller is not this contract")

	// ErrEmptyPayloadHash is returned when seeding a failure record with the
	// zero hash, which would read as no record.
	ErrEmptyPayloadHash = errors.New("empty payload hash")
)
