package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_StartsAtZero(t *testing.T) {
	assert.Equal(t, int64(0), NewClock().Current())
}

func TestClock_ResumesAt(t *testing.T) {
	c := NewClockAt(41)
	assert.Equal(t, int64(41), c.Current())
	assert.Equal(t, int64(42), c.Next(), "resumed clock continues after start")
}

func TestClock_NextIsStrictlyIncreasing(t *testing.T) {
	c := NewClock()

	prev := c.Current()
	for range 50 {
		n := c.Next()
		assert.Greater(t, n, prev)
		prev = n
	}
	assert.Equal(t, int64(50), c.Current())
	assert.Equal(t, int64(50), c.Current(), "Current must not advance the clock")
}

func TestClock_ConcurrentNextUnique(t *testing.T) {
	c := NewClock()
	const workers, perWorker = 16, 200

	var (
		mu   sync.Mutex
		seen = make(map[int64]bool, workers*perWorker)
		wg   sync.WaitGroup
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]int64, 0, perWorker)
			for range perWorker {
				local = append(local, c.Next())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, n := range local {
				assert.False(t, seen[n], "seq %d issued twice", n)
				seen[n] = true
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
	assert.Equal(t, int64(workers*perWorker), c.Current())
}
