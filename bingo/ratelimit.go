package bingo

import (
	"time"

	"golang.org/x/time/rate"
)

// Limit allows Max requests per Window.
type Limit struct {
	Max    int
	Window time.Duration
}

// DefaultLimits are the per-connection budgets for each client event.
var DefaultLimits = map[string]Limit{
	EventCreateRoom:   {Max: 5, Window: time.Minute},
	EventJoinRoom:     {Max: 10, Window: time.Minute},
	EventStartGame:    {Max: 5, Window: time.Minute},
	EventUpdateMarked: {Max: 30, Window: 10 * time.Second},
	EventVerifyBingo:  {Max: 10, Window: 10 * time.Second},
	EventLockTile:     {Max: 30, Window: 10 * time.Second},
}

type limitKey struct {
	conn  string
	event string
}

type bucket struct {
	limiter *rate.Limiter
	resetAt time.Time
}

func newBucket(lim Limit, now time.Time) *bucket {
	return &bucket{
		limiter: rate.NewLimiter(rate.Every(lim.Window), lim.Max),
		resetAt: now.Add(lim.Window),
	}
}

// Limiter keeps one bucket per connection and event. A bucket opens with
// Max tokens on the first request and is replaced by a full one once its
// Window has passed, so no window ever admits more than Max requests.
// Limiter is not safe for concurrent use.
type Limiter struct {
	limits  map[string]Limit
	buckets map[limitKey]*bucket
	now     func() time.Time
}

func NewLimiter(limits map[string]Limit, now func() time.Time) *Limiter {
	if limits == nil {
		limits = DefaultLimits
	}
	if now == nil {
		now = time.Now
	}

	return &Limiter{
		limits:  limits,
		buckets: make(map[limitKey]*bucket),
		now:     now,
	}
}

// Allow spends a token for conn's event. Events without a configured limit
// always pass.
func (l *Limiter) Allow(conn, event string) bool {
	lim, ok := l.limits[event]
	if !ok || lim.Max <= 0 || lim.Window <= 0 {
		return true
	}

	now := l.now()
	key := limitKey{conn: conn, event: event}

	b, ok := l.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		b = newBucket(lim, now)
		l.buckets[key] = b
	}

	return b.limiter.AllowN(now, 1)
}

// Sweep discards buckets whose window has closed. It returns how many were
// removed.
func (l *Limiter) Sweep() int {
	now := l.now()

	removed := 0
	for key, b := range l.buckets {
		if !now.Before(b.resetAt) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Forget drops every bucket belonging to conn.
func (l *Limiter) Forget(conn string) {
	for key := range l.buckets {
		if key.conn == conn {
			delete(l.buckets, key)
		}
	}
}

// Len is the number of live buckets.
func (l *Limiter) Len() int {
	return len(l.buckets)
}

// LimitError is the rejection sent when event exceeds its budget.
func LimitError(event string) error {
	if event == EventVerifyBingo {
		return ErrTooManyRequests
	}
	return ErrRateLimited
}
