/*
Package limiter foydalanuvchi bo'yicha xabar tezligini cheklash.

Har bir foydalanuvchi uchun alohida token bucket (rate.Limiter) saqlanadi:
tezlik 1/minInterval, burst 1. Shunda xabar faqat oxirgi qabul qilingan
xabardan kamida minInterval o'tgan bo'lsa o'tkaziladi. Rad etilgan urinish
tokenni sarflamaydi.
*/
package limiter

import (
	"context"
	"sync"
	"time"

	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/logx"

	"golang.org/x/time/rate"
)

// UserRateLimiter foydalanuvchi ID bo'yicha limiterlar xaritasi
type UserRateLimiter struct {
	mu     sync.RWMutex
	limits map[string]*rate.Limiter
	r      rate.Limit
}

// NewUserRateLimiter minInterval <= 0 bo'lsa cheklov o'chiriladi
func NewUserRateLimiter(minInterval time.Duration) *UserRateLimiter {
	r := rate.Inf
	if minInterval > 0 {
		r = rate.Every(minInterval)
	}
	return &UserRateLimiter{
		limits: make(map[string]*rate.Limiter),
		r:      r,
	}
}

// getLimiter double-checked locking bilan limiterni olish yoki yaratish
func (l *UserRateLimiter) getLimiter(userID string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limits[userID]
	l.mu.RUnlock()

	if !exists {
		l.mu.Lock()
		limiter, exists = l.limits[userID]
		if !exists {
			limiter = rate.NewLimiter(l.r, 1)
			l.limits[userID] = limiter
		}
		l.mu.Unlock()
	}

	return limiter
}

// Allow now vaqtida xabar qabul qilinadimi
func (l *UserRateLimiter) Allow(userID string, now time.Time) bool {
	return l.getLimiter(userID).AllowN(now, 1)
}

// Cleanup to'la bucketli (faol bo'lmagan) limiterlarni o'chirish; o'chirilganlar sonini qaytaradi
func (l *UserRateLimiter) Cleanup(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for id, limiter := range l.limits {
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			delete(l.limits, id)
			count++
		}
	}
	return count
}

// Size xotiradagi limiterlar soni
func (l *UserRateLimiter) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.limits)
}

// Run ctx tugaguncha har interval da Cleanup ni chaqiradi
func (l *UserRateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := l.Cleanup(now); removed > 0 {
				logx.Debug("rate limiter cleanup", "removed", removed, "active", l.Size())
			}
		}
	}
}
