// Package mempool keeps size-classed pools of sample buffers for the resampling
// hot path.
package mempool

import (
	"sync"
)

var intPools sync.Map // key: size class (int), value: *sync.Pool

// sizeClass rounds n up to the next multiple of 1024 to reduce churn.
func sizeClass(n int) int {
	const step = 1024
	if n <= step {
		return step
	}
	return (n + step - 1) / step * step
}

func intPool(cls int) *sync.Pool {
	pAny, _ := intPools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]int, cls) }})
	p, _ := pAny.(*sync.Pool)
	return p
}

// GetInts retrieves an []int buffer with length n from the pool. Contents are not
// zeroed. The caller should return it via PutInts when done.
func GetInts(n int) []int {
	cls := sizeClass(n)
	p := intPool(cls)
	if p == nil {
		return make([]int, n, cls)
	}
	buf, ok := p.Get().([]int)
	if !ok || cap(buf) < cls {
		buf = make([]int, cls)
	}
	return buf[:max(n, 0)]
}

// PutInts returns a buffer to the pool. It is safe to pass a nil slice. Buffers
// whose capacity is not a size class (not from GetInts) are dropped.
func PutInts(buf []int) {
	if buf == nil || sizeClass(cap(buf)) != cap(buf) {
		return
	}
	if p := intPool(cap(buf)); p != nil {
		p.Put(buf[:cap(buf)]) //nolint:staticcheck
	}
}
