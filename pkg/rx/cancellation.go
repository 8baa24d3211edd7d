package rx

import (
	"sync"
	"sync/atomic"
)

type cancellation struct {
	release  func()
	once     sync.Once
	released atomic.Bool
}

// NewCancellation returns a Cancellation that runs release at most once.
// A nil release is allowed.
func NewCancellation(release func()) Cancellation {
	return &cancellation{release: release}
}

func (c *cancellation) Release() {
	c.once.Do(func() {
		c.released.Store(true)
		if c.release != nil {
			c.release()
		}
	})
}

func (c *cancellation) Released() bool {
	return c.released.Load()
}
