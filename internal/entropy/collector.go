package entropy

import (
	"sync"
	"sync/atomic"
	"time"
)

// Sampling cadences, carried over from the original implementation's
// nanosleep constants (9_000_000ns fast, 190_000_000ns slow — roughly
// 110Hz and 5Hz respectively).
const (
	fastInterval = 9 * time.Millisecond
	slowInterval = 190 * time.Millisecond
)

// collector is the single long-lived background worker that samples
// fast-flux entropy and feeds the pool. It runs at fastInterval while
// the pool is below target and slowInterval once the target is met,
// matching spec.md §4.A's "two rates" collector description.
type collector struct {
	pool     *Pool
	interval atomic.Int64 // time.Duration stored as int64 nanoseconds
	done     chan struct{}
	wg       sync.WaitGroup
}

func newCollector(p *Pool) *collector {
	c := &collector{
		pool: p,
		done: make(chan struct{}),
	}
	c.interval.Store(int64(fastInterval))
	return c
}

func (c *collector) goFast() { c.interval.Store(int64(fastInterval)) }
func (c *collector) goSlow() { c.interval.Store(int64(slowInterval)) }

func (c *collector) start() {
	c.wg.Add(1)
	go c.run()
}

func (c *collector) stop() {
	close(c.done)
	c.wg.Wait()
}

func (c *collector) run() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		default:
		}

		c.pool.Add(nil)

		d := time.Duration(c.interval.Load())
		select {
		case <-c.done:
			return
		case <-time.After(d):
		}
	}
}
