package contracts

import "errors"

var (
	// ErrInvalidJob is returned when a job fails validation; it is always
	// detected before any side effect.
	ErrInvalidJob = errors.New("job is invalid")

	// ErrCorruptLedger is returned when an existing ledger document cannot be
	// parsed; no automatic repair is attempted.
	ErrCorruptLedger = errors.New("ledger is corrupt")

	// ErrPersist is returned when writing a ledger fails; the on-disk state is
	// indeterminate afterwards.
	ErrPersist = errors.New("ledger could not be persisted")
)
