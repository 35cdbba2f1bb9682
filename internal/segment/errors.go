package segment

import "errors"

var (
	// ErrInvalidParameter is returned for an unsupported mode or a tuning
	// value outside its accepted range. Nothing is computed.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrShapeMismatch is returned when a grid's buffer does not match its
	// declared extent, or when two stage inputs disagree in extent.
	ErrShapeMismatch = errors.New("shape mismatch")
)
