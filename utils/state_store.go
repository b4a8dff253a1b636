package utils

import "time"

const statePrefix = "oauth:state:"

var stateStore = newMemStore()

// SaveState stores an OAuth state token with TTL to mitigate CSRF.
func SaveState(state string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := redisCtx()
		defer cancel()
		_ = rc.Set(ctx, statePrefix+state, "1", ttl).Err()
		return
	}
	stateStore.set(state, []byte("1"), ttl)
}

// ConsumeState validates and removes a state token; each token is accepted once.
func ConsumeState(state string) bool {
	if state == "" {
		return false
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := redisCtx()
		defer cancel()
		v, err := rc.GetDel(ctx, statePrefix+state).Result()
		return err == nil && v != ""
	}
	_, ok := stateStore.take(state)
	return ok
}
