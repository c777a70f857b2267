package staking

import "errors"

var (
	// ErrAccountNotFound is returned when an account the operation depends on does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrPoolNotFound is returned when the pool account does not exist.
	ErrPoolNotFound = errors.New("pool not found")

	// ErrNoAddressFound is returned when no valid bump produces an off-curve address.
	ErrNoAddressFound = errors.New("no valid program address found")

	// ErrUnsupportedProtocolVersion is returned for a pool version byte with no known layout.
	ErrUnsupportedProtocolVersion = errors.New("unsupported protocol version")

	// ErrUnsupportedOperation is returned when the pool's protocol version has no opcode for an operation.
	ErrUnsupportedOperation = errors.New("operation not supported by protocol version")

	// ErrMemberExists is returned when initializing a member account that already exists.
	ErrMemberExists = errors.New("member account already exists")

	// ErrNotFullySigned is returned when a transaction is submitted without every required signature.
	ErrNotFullySigned = errors.New("transaction is not fully signed")
)
