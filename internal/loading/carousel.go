// Package loading rotates the cosmetic messages shown while a snapshot loads.
package loading

import (
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultInterval is how long each message stays on screen.
const DefaultInterval = 2 * time.Second

// Carousel emits a random message immediately on Start and then once per
// interval until Stop. Restarting while running is a no-op.
type Carousel struct {
	interval time.Duration
	emit     func(string)

	mu   sync.Mutex
	rng  *rand.Rand
	stop chan struct{}
	done chan struct{}
}

// NewCarousel creates a stopped carousel. emit is called from the
// carousel's goroutine and from Start.
func NewCarousel(interval time.Duration, emit func(string)) *Carousel {
	if interval <= 0 {
		interval = DefaultInterval
	}
	seed := uint64(time.Now().UnixNano())
	return &Carousel{
		interval: interval,
		emit:     emit,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Running reports whether the carousel is currently rotating.
func (c *Carousel) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}

// Start begins rotating.
func (c *Carousel) Start() {
	c.mu.Lock()
	if c.stop != nil {
		c.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	c.stop, c.done = stop, done
	first := c.pick()
	c.mu.Unlock()

	c.emit(first)
	go c.run(stop, done)
}

// Stop halts rotation and waits for the rotating goroutine to exit, so no
// message is emitted after Stop returns.
func (c *Carousel) Stop() {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (c *Carousel) run(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			msg := c.pick()
			c.mu.Unlock()
			select {
			case <-stop:
				return
			default:
			}
			c.emit(msg)
		}
	}
}

// pick must be called with c.mu held.
func (c *Carousel) pick() string {
	return messages[c.rng.IntN(len(messages))]
}
