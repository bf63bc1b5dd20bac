package autoclicker

import (
	"math/rand"
	"sync"
	"time"
)

// Jitter draws symmetric millisecond offsets. It is safe for concurrent use.
type Jitter struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewJitter(seed int64) *Jitter {
	return &Jitter{rng: rand.New(rand.NewSource(seed))}
}

func newTimeSeededJitter() *Jitter {
	return NewJitter(time.Now().UnixNano())
}

// Sample returns a uniform integer in [-rangeMS, rangeMS]. A non-positive range
// yields 0; ranges above MaxTimingMS are capped.
func (j *Jitter) Sample(rangeMS int) int {
	if rangeMS <= 0 {
		return 0
	}
	rangeMS = min(rangeMS, MaxTimingMS)
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.rng.Intn(2*rangeMS+1) - rangeMS
}

// phaseDuration applies a jitter sample to a nominal delay, clamped to
// [0, 2*MaxTimingMS] milliseconds.
func phaseDuration(nominalMS, offsetMS int) time.Duration {
	nominal := min(max(nominalMS, 0), MaxTimingMS)
	offset := min(max(offsetMS, -MaxTimingMS), MaxTimingMS)
	total := max(nominal+offset, 0)
	return time.Duration(total) * time.Millisecond
}
