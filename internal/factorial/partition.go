package factorial

import "fmt"

// Range is an inclusive interval [Low, High] of the factorial domain.
// A Range with Low > High is empty and its product is 1.
type Range struct {
	Low  int64
	High int64
}

// Empty reports whether the range contains no integers.
func (r Range) Empty() bool { return r.Low > r.High }

// Len returns the number of integers in the range.
func (r Range) Len() int64 {
	if r.Empty() {
		return 0
	}
	return r.High - r.Low + 1
}

func (r Range) String() string { return fmt.Sprintf("[%d, %d]", r.Low, r.High) }

// Split partitions [1, n] into exactly w contiguous, pairwise disjoint ranges
// in ascending order. Every block but the last holds n/w integers; the last
// block absorbs the remainder. When n < w the leading blocks are empty and the
// last one covers [1, n]. A w below 1 is treated as 1 and an n below 1 yields
// w empty ranges.
func Split(n int64, w int) []Range {
	if w < 1 {
		w = 1
	}
	ranges := make([]Range, w)
	if n < 1 {
		for i := range ranges {
			ranges[i] = Range{Low: 1, High: 0}
		}
		return ranges
	}

	base := n / int64(w)
	var high int64
	for i := 0; i < w-1; i++ {
		low := high + 1
		high = low + base - 1
		ranges[i] = Range{Low: low, High: high}
	}
	ranges[w-1] = Range{Low: high + 1, High: n}
	return ranges
}
