// Package apperrors holds the error types shared by the factorial engines,
// the sweep driver and the command-line front end, and maps them to process
// exit codes.
//
// A parallel computation that loses one or more workers reports every failed
// block through AggregateComputeError; each BlockError unwraps to its cause,
// so errors.Is and errors.As see through both layers. Input rejected before
// any work starts matches ErrInvalidArgument.
package apperrors
