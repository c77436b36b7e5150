package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ipWindow      = 15 * time.Minute
	ipLimit       = 10
	emailCooldown = 2 * time.Minute
)

// Limiter implements fixed-window rate limiting on Redis. Counters expire
// with the window, so no cleanup job is needed.
type Limiter struct {
	client *redis.Client
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

func ipKey(ip, purpose string) string {
	if purpose == "" {
		purpose = "default"
	}
	return fmt.Sprintf("ratelimit:ip:%s:%s", purpose, ip)
}

func emailCooldownKey(email string) string {
	return fmt.Sprintf("ratelimit:email_cooldown:%s", email)
}

// CheckIPRateLimit reports whether the IP has exhausted the default window
func (l *Limiter) CheckIPRateLimit(ctx context.Context, ip string) (bool, error) {
	return l.CheckIPRateLimitWithPurpose(ctx, ip, "")
}

// CheckIPRateLimitWithPurpose reports whether the IP has exhausted the
// window for a specific purpose (register, login, ...)
func (l *Limiter) CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error) {
	count, err := l.client.Get(ctx, ipKey(ip, purpose)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read rate limit counter: %w", err)
	}
	return count >= ipLimit, nil
}

// RecordIPRequest counts a request against the default window
func (l *Limiter) RecordIPRequest(ctx context.Context, ip string) error {
	return l.RecordIPRequestWithPurpose(ctx, ip, "")
}

// RecordIPRequestWithPurpose counts a request against the purpose window.
// The window starts with the first request in it.
func (l *Limiter) RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error {
	key := ipKey(ip, purpose)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, ipWindow).Err(); err != nil {
			return fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return nil
}

// CheckEmailCooldown reports whether the email is still on cooldown
func (l *Limiter) CheckEmailCooldown(ctx context.Context, email string) (bool, error) {
	exists, err := l.client.Exists(ctx, emailCooldownKey(email)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check email cooldown: %w", err)
	}
	return exists > 0, nil
}

// SetEmailCooldown starts the cooldown for an email
func (l *Limiter) SetEmailCooldown(ctx context.Context, email string) error {
	err := l.client.Set(ctx, emailCooldownKey(email), "1", emailCooldown).Err()
	if err != nil {
		return fmt.Errorf("failed to set email cooldown: %w", err)
	}
	return nil
}
