package config

import "time"

// RateLimitConfig drives the redis token bucket on mutating routes.
type RateLimitConfig struct {
	Enabled        bool          `koanf:"rate_limit_enabled"`
	Capacity       int           `koanf:"rate_limit_capacity"`
	RefillTokens   int           `koanf:"rate_limit_refill_tokens"`
	RefillInterval time.Duration `koanf:"rate_limit_refill_interval"`
	TTL            time.Duration `koanf:"rate_limit_ttl"`
	KeyStrategy    string        `koanf:"rate_limit_key_strategy"`
	Prefix         string        `koanf:"rate_limit_prefix"`
	Debug          bool          `koanf:"rate_limit_debug"`

	// Legacy aliases: RATE_LIMIT_BURST sets Capacity and
	// RATE_LIMIT_REFILL_EVERY means one token per interval.
	Burst       int           `koanf:"rate_limit_burst"`
	RefillEvery time.Duration `koanf:"rate_limit_refill_every"`
}

func (r *RateLimitConfig) normalize() {
	if r.Burst > 0 {
		r.Capacity = r.Burst
	}
	if r.RefillEvery > 0 {
		r.RefillTokens = 1
		r.RefillInterval = r.RefillEvery
	}
	if r.Capacity < 1 {
		r.Capacity = 1
	}
	if r.RefillTokens < 1 {
		r.RefillTokens = 1
	}
	if r.RefillInterval <= 0 {
		r.RefillInterval = time.Second
	}
	if minTTL := 5 * r.RefillInterval; r.TTL < minTTL {
		r.TTL = minTTL
	}
}
