package dict

import "errors"

var (
	// ErrOutOfMemory is returned when an entry or slot array allocation
	// would exceed the memory limit configured with WithMemoryLimit.
	// The dict is left exactly as it was before the call.
	ErrOutOfMemory = errors.New("dict: out of memory")

	// ErrKeyExists is returned by Add and AddRaw when the key is already
	// present.
	ErrKeyExists = errors.New("dict: key exists")

	// ErrKeyNotFound is returned by Delete and FetchValue on a miss.
	ErrKeyNotFound = errors.New("dict: key not found")

	// ErrIteratorContract is the error carried by the panic raised when an
	// unsafe iterator is released after the dict changed structurally.
	ErrIteratorContract = errors.New("dict: unsafe iterator fingerprint mismatch")

	// ErrRehashInProgress is returned by Expand and Resize while a rehash
	// is still running.
	ErrRehashInProgress = errors.New("dict: rehash in progress")

	// ErrInvalidSize is returned by Expand when the requested size cannot
	// hold the current entries or equals the current size.
	ErrInvalidSize = errors.New("dict: invalid size")

	// ErrResizeDisabled is returned by Resize while the resize gate is
	// closed.
	ErrResizeDisabled = errors.New("dict: resize disabled")

	// ErrInvalidPolicy is returned by ParsePolicy and Policy.Validate.
	ErrInvalidPolicy = errors.New("dict: invalid policy")
)
