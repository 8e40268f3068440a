package cycle

import "errors"

var (
	// ErrNoTransition is returned when the scan range contains no feature
	// the selected method can locate.
	ErrNoTransition = errors.New("cycle: no transition in scan range")
	// ErrZeroReference is returned by AlterationIndex when the first heating
	// susceptibility is zero.
	ErrZeroReference = errors.New("cycle: zero reference susceptibility")
	// ErrUnknownMethod is returned for an unrecognised method name or value.
	ErrUnknownMethod = errors.New("cycle: unknown estimation method")
)
