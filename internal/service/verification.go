package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// CodeStore issues and checks email verification codes.
type CodeStore interface {
	Issue(ctx context.Context, email string) (string, error)
	Check(ctx context.Context, email, code string) (bool, error)
}

// OTPStore keeps short-lived email verification codes in Redis. Codes expire
// on their own via TTL and are consumed on first successful check.
type OTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOTPStore builds a store with the configured code lifetime.
func NewOTPStore(client *redis.Client, ttl time.Duration) *OTPStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OTPStore{client: client, ttl: ttl}
}

func otpKey(email string) string {
	return "otp:" + email
}

// Issue generates a fresh six digit code for the address, replacing any
// outstanding one.
func (s *OTPStore) Issue(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())
	if err := s.client.Set(ctx, otpKey(email), code, s.ttl).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Check consumes the code for the address. A wrong code does not invalidate
// the stored one; a correct code is single use.
func (s *OTPStore) Check(ctx context.Context, email, code string) (bool, error) {
	stored, err := s.client.Get(ctx, otpKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if stored != code {
		return false, nil
	}
	if err := s.client.Del(ctx, otpKey(email)).Err(); err != nil {
		return false, err
	}
	return true, nil
}
