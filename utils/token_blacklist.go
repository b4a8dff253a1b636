package utils

import "time"

const blacklistPrefix = "jwt:blacklist:"

var blacklist = newMemStore()

// BlacklistToken revokes a token until its natural expiration.
func BlacklistToken(token string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := redisCtx()
		defer cancel()
		if err := rc.Set(ctx, blacklistPrefix+token, "1", ttl).Err(); err != nil {
			Sugar.Warnf("token blacklist write failed: %v", err)
		}
		return
	}
	blacklist.set(token, []byte("1"), ttl)
}

// IsTokenBlacklisted checks if a token was revoked before natural expiration.
func IsTokenBlacklisted(token string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := redisCtx()
		defer cancel()
		n, err := rc.Exists(ctx, blacklistPrefix+token).Result()
		if err != nil {
			// fail open on redis errors to avoid locking every user out
			return false
		}
		return n > 0
	}
	_, ok := blacklist.get(token)
	return ok
}
