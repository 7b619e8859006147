// Package kahan implements compensated summation, used everywhere the
// engine accumulates many small function contributions into one pixel or
// flux value and needs the result to be independent of summation order.
package kahan

// Sum is a running compensated sum. Zero value is an empty accumulator.
type Sum struct {
	total float64
	c     float64 // running compensation for lost low-order bits
}

// Add folds x into the running total.
func (s *Sum) Add(x float64) {
	y := x - s.c
	t := s.total + y
	s.c = (t - s.total) - y
	s.total = t
}

// Total returns the accumulated sum.
func (s *Sum) Total() float64 {
	return s.total
}

// Reset clears the accumulator to zero.
func (s *Sum) Reset() {
	s.total = 0
	s.c = 0
}
