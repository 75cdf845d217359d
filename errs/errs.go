// Package errs holds the error kinds shared by the pricer, the path
// simulator and the market data providers. Call sites wrap one of these
// with fmt.Errorf("%w: ...") and callers match with errors.Is.
package errs

import "errors"

var (
	// ErrInvalidArgument marks a precondition violation by the caller.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDegenerateInput marks inputs that would make the formulas
	// divide by zero or produce a trivial or unbounded result.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrUpstreamUnavailable marks a market data lookup that failed
	// (network, parse, unknown symbol).
	ErrUpstreamUnavailable = errors.New("upstream data unavailable")
)
