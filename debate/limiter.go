package debate

import (
	"fmt"
	"sync"

	"github.com/Hrishikeshgupta2002/AI-Council/core"
)

type pair struct{ a, b string }

func newPair(x, y string) pair {
	if x > y {
		x, y = y, x
	}

	return pair{a: x, b: y}
}

// ExchangeLimiter enforces a maximum number of exchanges per pair of debating
// agents.
type ExchangeLimiter struct {
	limit  int
	counts map[pair]int
	total  int
	mu     sync.Mutex
}

// NewExchangeLimiter creates a limiter over every pair of participants.
// If limit == 0, unlimited exchanges are allowed.
func NewExchangeLimiter(limit int, participants []string) *ExchangeLimiter {
	l := &ExchangeLimiter{limit: limit, counts: map[pair]int{}}

	for i := range participants {
		for j := i + 1; j < len(participants); j++ {
			l.counts[newPair(participants[i], participants[j])] = 0
		}
	}

	return l
}

// Increment counts one exchange for every pair (and the round total) and returns
// core.ErrExchangeLimit if any pair exceeds the maximum. Counts are not
// advanced when the limit would be exceeded.
func (l *ExchangeLimiter) Increment() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.limit > 0 {
		if l.total+1 > l.limit {
			return fmt.Errorf("%w: %d exchanges", core.ErrExchangeLimit, l.total)
		}

		for p, n := range l.counts {
			if n+1 > l.limit {
				return fmt.Errorf("%w: %s and %s already exchanged %d times", core.ErrExchangeLimit, p.a, p.b, n)
			}
		}
	}

	for p := range l.counts {
		l.counts[p]++
	}

	l.total++

	return nil
}

// Count returns the exchanges recorded between a and b.
func (l *ExchangeLimiter) Count(a, b string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.counts[newPair(a, b)]
}

// Remaining returns how many exchanges are left before the first pair hits
// the limit, or -1 when unlimited.
func (l *ExchangeLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.limit == 0 {
		return -1 // unlimited
	}

	highest := l.total
	for _, n := range l.counts {
		highest = max(highest, n)
	}

	return l.limit - highest
}

// Exhausted reports whether some pair has reached the maximum.
func (l *ExchangeLimiter) Exhausted() bool {
	return l.Remaining() == 0
}
