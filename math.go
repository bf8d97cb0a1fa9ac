package vrend

import (
	lin "github.com/xlab/linmath"
)

// ClearColor is the per-frame clear color. The blue channel ramps from 0
// towards 1 over period frames, then wraps.
func ClearColor(frame uint64, period int) lin.Vec4 {
	if period < 2 {
		period = 2
	}
	phase := float32(frame%uint64(period)) / float32(period)
	return lin.Vec4{0.05, 0.05, phase, 1.0}
}
