package bench

import "testing"

const (
	nPos    = 9000
	nPosVel = 1000
)

type Position struct {
	X float64
	Y float64
}

type Velocity struct {
	X float64
	Y float64
}

// setup runs fn outside the measured time of b.
func setup(b *testing.B, fn func()) {
	b.Helper()
	b.StopTimer()
	fn()
	b.ResetTimer()
	b.StartTimer()
}
