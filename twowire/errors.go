package twowire

import "errors"

// Bus errors. Wrapped errors carry the failing line and operation; test with
// errors.Is.
var (
	// ErrConfiguration indicates a pin could not be claimed or is missing.
	ErrConfiguration = errors.New("twowire: configuration error")

	// ErrInvalidArgument indicates a payload or value outside the device limits.
	// No line was touched.
	ErrInvalidArgument = errors.New("twowire: invalid argument")

	// ErrIO indicates a line operation failed mid-transaction. The bus is left in
	// an undefined state until the caller issues Stop.
	ErrIO = errors.New("twowire: I/O error")

	// ErrIllegalState indicates an operation on a closed line or bus, or a level
	// access that does not match the line direction.
	ErrIllegalState = errors.New("twowire: illegal state")
)
