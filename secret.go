package ringct

import (
	"runtime"

	"github.com/bwesterb/go-ristretto"
)

// wipeBytes zeroes buf in place. KeepAlive stops the stores from being
// optimized away.
func wipeBytes(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	runtime.KeepAlive(buf)
}

func wipeScalar(s *ristretto.Scalar) {
	if s == nil {
		return
	}
	s.SetZero()
	runtime.KeepAlive(s)
}

func wipeScalars(scalars []*ristretto.Scalar) {
	for _, s := range scalars {
		wipeScalar(s)
	}
}

func wipePoint(p *ristretto.Point) {
	if p == nil {
		return
	}
	p.SetZero()
	runtime.KeepAlive(p)
}
