package model

import "github.com/cockroachdb/errors"

// Error taxonomy for table retrieval. Concrete failures are wrapped
// with context and marked with one of these references, so callers
// classify with errors.Is.
var (
	// ErrNotSupported marks a platform or subsystem gap, e.g. macOS or
	// a kernel without IPv6.
	ErrNotSupported = errors.New("not supported")

	// ErrSystem marks a native API failure code.
	ErrSystem = errors.New("system error")

	// ErrIO marks a file open or read failure.
	ErrIO = errors.New("io error")
)
