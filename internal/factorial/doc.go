// Package factorial computes N! with two engines: a serial accumulator and a
// parallel engine that splits [1, N] into one contiguous block per worker,
// computes each block's partial product concurrently and multiplies the
// partial products together in block order.
//
// The serial engine is the correctness oracle: for every N >= 0 the parallel
// engine returns exactly the same integer.
package factorial
