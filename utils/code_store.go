package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"
	"time"
)

const (
	codePrefix     = "verify:email:"
	cooldownPrefix = "cooldown:email:"
)

var codeStore = newMemStore()

// GenerateVerificationCode creates a numeric code with given length.
func GenerateVerificationCode(n int) string {
	if n <= 0 {
		n = 6
	}
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			v = big.NewInt(time.Now().UnixNano() % 10)
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits)
}

// SaveEmailCode stores a code for an email with TTL. Prefer Redis; fallback to memory.
func SaveEmailCode(email, code string, ttl time.Duration) {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := redisCtx()
		defer cancel()
		if err := rc.Set(ctx, codePrefix+email, code, ttl).Err(); err == nil {
			return
		}
	}
	codeStore.set(codePrefix+email, []byte(code), ttl)
}

// VerifyAndConsumeCode checks a code for email. The stored code is removed on
// every attempt, so a wrong guess forces a new code to be sent.
func VerifyAndConsumeCode(email, code string) bool {
	if email == "" || code == "" {
		return false
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := redisCtx()
		defer cancel()
		if val, err := rc.GetDel(ctx, codePrefix+email).Result(); err == nil {
			return subtle.ConstantTimeCompare([]byte(val), []byte(code)) == 1
		}
	}
	stored, ok := codeStore.take(codePrefix + email)
	return ok && subtle.ConstantTimeCompare(stored, []byte(code)) == 1
}

// EmailCooldownTrySet sets a cooldown key for sending email code. Returns true if set, false if cooling down.
func EmailCooldownTrySet(email string, cooldown time.Duration) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := redisCtx()
		defer cancel()
		ok, err := rc.SetNX(ctx, cooldownPrefix+email, "1", cooldown).Result()
		if err == nil {
			return ok
		}
	}
	return codeStore.setIfAbsent(cooldownPrefix+email, []byte("1"), cooldown)
}
