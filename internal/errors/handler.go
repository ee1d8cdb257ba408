package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies the escape sequences used when printing errors.
// The CLI passes its themed implementation; tests can pass NoColor.
type ColorProvider interface {
	Yellow() string
	Red() string
	Reset() string
}

// NoColor is a ColorProvider that emits no escape sequences.
type NoColor struct{}

func (NoColor) Yellow() string { return "" }
func (NoColor) Red() string    { return "" }
func (NoColor) Reset() string  { return "" }

// HandleCalculationError prints a user-facing message for err and maps it to
// an exit code. A nil error maps to ExitSuccess and prints nothing.
//
// Parameters:
//   - err: The error returned by a calculation.
//   - duration: How long the calculation ran before failing (0 if unknown).
//   - out: The writer for the message.
//   - colors: The color provider used to highlight the message.
//
// Returns:
//   - int: The exit code matching the error class.
func HandleCalculationError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	if colors == nil {
		colors = NoColor{}
	}

	suffix := ""
	if duration > 0 {
		suffix = fmt.Sprintf(" after %s", duration)
	}

	var timeoutErr TimeoutError
	var configErr ConfigError
	var aggErr *AggregateComputeError
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.As(err, &timeoutErr):
		fmt.Fprintf(out, "%sStatus: Failure (Timeout). The execution limit was reached%s.%s\n",
			colors.Yellow(), suffix, colors.Reset())
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(out, "%sStatus: Canceled by user%s.%s\n", colors.Yellow(), suffix, colors.Reset())
		return ExitErrorCanceled
	case errors.As(err, &configErr), errors.Is(err, ErrInvalidArgument):
		fmt.Fprintf(out, "%sStatus: Invalid input. %v%s\n", colors.Red(), err, colors.Reset())
		return ExitErrorConfig
	case errors.As(err, &aggErr):
		fmt.Fprintf(out, "%sStatus: Failure. %d worker block(s) failed%s: %v%s\n",
			colors.Red(), len(aggErr.Failures), suffix, err, colors.Reset())
		return ExitErrorGeneric
	default:
		fmt.Fprintf(out, "%sStatus: Failure. An unexpected error occurred%s: %v%s\n",
			colors.Red(), suffix, err, colors.Reset())
		return ExitErrorGeneric
	}
}
