// Package orchestration is the benchmark driver: it times calculators over
// one N or a sweep of N, retires engines that exceed the wall-clock cutoff,
// and checks that every engine produced the same value. It decouples timing
// from presentation via the ProgressReporter, SweepObserver and
// ResultPresenter interfaces.
package orchestration
