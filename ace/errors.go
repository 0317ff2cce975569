package ace

import "github.com/pkg/errors"

var (
	// ErrInvalidConfig reports bad dimensions, buffer sizes or parameters.
	// Nothing is written to the output when it is returned.
	ErrInvalidConfig = errors.New("ace: invalid configuration")
	// ErrDegenerateChannel reports a channel whose scores have no spread, under DegenerateFail.
	ErrDegenerateChannel = errors.New("ace: degenerate channel")
)
