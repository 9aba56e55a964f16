package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWalk_StaysInBounds(t *testing.T) {
	w := newWalk(42, 21.0, 15.0, 30.0, 5.0)

	for i := 0; i < 10_000; i++ {
		v := w.next()
		require.GreaterOrEqual(t, v, 15.0)
		require.LessOrEqual(t, v, 30.0)
	}
}

func TestWalk_DeterministicUnderSeed(t *testing.T) {
	a := newWalk(7, 50.0, 20.0, 80.0, 1.5)
	b := newWalk(7, 50.0, 20.0, 80.0, 1.5)

	for i := 0; i < 100; i++ {
		require.Equal(t, a.next(), b.next())
	}
}

func TestWalk_AdvancesState(t *testing.T) {
	w := newWalk(1, 21.0, 15.0, 30.0, 0.4)

	first := w.next()
	second := w.next()
	require.NotEqual(t, first, second)
}
