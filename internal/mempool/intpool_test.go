package mempool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeClass(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{name: "small size gets minimum", input: 1, expected: 1024},
		{name: "exactly 1024", input: 1024, expected: 1024},
		{name: "just over 1024", input: 1025, expected: 2048},
		{name: "exact multiple of 1024", input: 2048, expected: 2048},
		{name: "large size", input: 10000, expected: 10240},
		{name: "zero size", input: 0, expected: 1024},
		{name: "negative size", input: -1, expected: 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sizeClass(tt.input))
		})
	}
}

func TestGetInts(t *testing.T) {
	buf := GetInts(1500)
	assert.Len(t, buf, 1500)
	assert.Equal(t, 2048, cap(buf))

	empty := GetInts(0)
	assert.Empty(t, empty)
	assert.Equal(t, 1024, cap(empty))
}

func TestPutIntsReuse(t *testing.T) {
	buf := GetInts(10)
	buf[0] = 42
	PutInts(buf[:0])

	// a returned buffer keeps its full capacity; sync.Pool may or may not hand
	// back the same one
	again := GetInts(10)
	require.Len(t, again, 10)
	assert.Equal(t, 1024, cap(again))
	PutInts(again)
}

func TestPutIntsIgnoresForeignBuffers(t *testing.T) {
	assert.NotPanics(t, func() {
		PutInts(nil)
		PutInts(make([]int, 7))
	})
}

func TestConcurrentAccess(t *testing.T) {
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				n := (i+1)*100 + j
				buf := GetInts(n)
				for k := range buf {
					buf[k] = k
				}
				assert.Len(t, buf, n)
				PutInts(buf)
			}
		}()
	}
	wg.Wait()
}
