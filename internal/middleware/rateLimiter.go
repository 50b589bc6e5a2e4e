package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client address. Buckets idle
// for longer than idleAfter are dropped so the map stays bounded.
type IPRateLimiter struct {
	clients   map[string]*clientLimiter
	mu        sync.Mutex
	rateLimit rate.Limit
	burstRate int
	idleAfter time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewIPRateLimiter(r rate.Limit, b int, idleAfter time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		clients:   make(map[string]*clientLimiter),
		rateLimit: r,
		burstRate: b,
		idleAfter: idleAfter,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow takes one token from ip's bucket.
func (i *IPRateLimiter) Allow(ip string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if i.idleAfter > 0 && now.Sub(i.lastSweep) >= i.idleAfter {
		i.evictIdle(now)
	}

	c, exists := i.clients[ip]
	if !exists {
		c = &clientLimiter{limiter: rate.NewLimiter(i.rateLimit, i.burstRate)}
		i.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (i *IPRateLimiter) evictIdle(now time.Time) {
	for ip, c := range i.clients {
		if now.Sub(c.lastSeen) >= i.idleAfter {
			delete(i.clients, ip)
		}
	}
	i.lastSweep = now
}

func (i *IPRateLimiter) tracked() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.clients)
}

//TODO: move the per-IP buckets to redis once more than one replica serves traffic
