package ledger

import (
	"sync"
	"time"
)

// Clock asigna la fecha de los movimientos.
type Clock interface {
	Now() time.Time
}

// monotonicClock nunca retrocede dentro del proceso aunque el reloj de pared lo haga.
type monotonicClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewMonotonicClock envuelve now (time.Now si es nil) en un reloj no decreciente, en UTC
// y con precisión de microsegundos (la que conservan SQLite y PostgreSQL).
func NewMonotonicClock(now func() time.Time) Clock {
	if now == nil {
		now = time.Now
	}
	return &monotonicClock{now: now}
}

func (c *monotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now().UTC().Truncate(time.Microsecond)
	if t.Before(c.last) {
		t = c.last
	}
	c.last = t
	return t
}
