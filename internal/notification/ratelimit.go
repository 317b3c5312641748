package notification

import (
	"sync"
	"time"

	"github.com/intranet-lab/backend/config"
	"github.com/puzpuzpuz/xsync"
)

type rateWindow struct {
	mutex       sync.Mutex
	windowStart time.Time
	count       int
}

// RateLimiter counts notifications per (kind, actor) pair within a fixed
// window. Windows are created lazily on first use and reset in place when
// they expire; there is no background sweep because the key space is bounded
// by active actors.
type RateLimiter struct {
	limits  map[string]config.RateLimitConfigs
	windows *xsync.MapOf[string, *rateWindow]

	now func() time.Time
}

func NewRateLimiter(limits map[string]config.RateLimitConfigs) *RateLimiter {
	return &RateLimiter{
		limits:  limits,
		windows: xsync.NewMapOf[*rateWindow](),
		now:     time.Now,
	}
}

// Allow consumes one slot for the given kind and actor. Kinds without a
// configured limit are never limited. One noisy actor cannot suppress
// another's notifications since windows are scoped per actor.
func (l *RateLimiter) Allow(kind, actorID string) bool {
	limit, ok := l.limits[kind]
	if !ok || limit.Limit <= 0 {
		return true
	}

	window, _ := l.windows.LoadOrStore(kind+":"+actorID, &rateWindow{})
	window.mutex.Lock()
	defer window.mutex.Unlock()

	now := l.now()
	if window.windowStart.IsZero() || now.Sub(window.windowStart) >= limit.Window {
		window.windowStart = now
		window.count = 0
	}

	if window.count >= limit.Limit {
		return false
	}

	window.count++
	return true
}
