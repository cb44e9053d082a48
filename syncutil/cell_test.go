package syncutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSetRoundTrips(t *testing.T) {
	c := NewSynchronized(3)
	assert.Equal(t, 3, c.Get())
	c.Set(7)
	assert.Equal(t, 7, c.Get())
}

func TestWriteAppliesReadModifyWrite(t *testing.T) {
	c := NewSynchronized(10)
	c.Write(func(v int) int { return v + 5 })
	assert.Equal(t, 15, c.Get())
}

func TestReadObservesCurrentValue(t *testing.T) {
	c := NewSynchronized([]int{1, 2, 3})
	var sum int
	c.Read(func(v []int) {
		for _, x := range v {
			sum += x
		}
	})
	assert.Equal(t, 6, sum)
}

func TestConcurrentWritesDoNotRace(t *testing.T) {
	c := NewSynchronized(0)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Write(func(v int) int { return v + 1 })
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, c.Get())
}
