package main

import "math/rand"

// walk is a bounded random walk producing plausible sensor values. State is
// explicit and owned by one worker; nothing here is shared.
type walk struct {
	rng   *rand.Rand
	value float64
	min   float64
	max   float64
	step  float64
}

func newWalk(seed int64, start, min, max, step float64) *walk {
	return &walk{
		rng:   rand.New(rand.NewSource(seed)),
		value: start,
		min:   min,
		max:   max,
		step:  step,
	}
}

// next advances the walk by a uniform step in [-step, +step], clamped to
// [min, max], and returns the new value.
func (w *walk) next() float64 {
	w.value += (w.rng.Float64()*2 - 1) * w.step
	if w.value < w.min {
		w.value = w.min
	}
	if w.value > w.max {
		w.value = w.max
	}
	return w.value
}
