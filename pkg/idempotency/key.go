package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
)

const (
	MinKeyLength = 16
	MaxKeyLength = 128
	KeyPrefix    = "idempotency"
)

var (
	ErrKeyTooShort = errors.New("idempotency key must be at least 16 characters")
	ErrKeyTooLong  = errors.New("idempotency key must not exceed 128 characters")
	ErrKeyInvalid  = errors.New("idempotency key contains invalid characters")
	// ErrKeyReused is returned when a key comes back with a different payload.
	ErrKeyReused = errors.New("idempotency key was already used with a different request")

	validKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)
)

// Scope confines a client supplied key to one node and credential, so the
// same key sent to two systems names two executions.
type Scope struct {
	Node       string
	Credential string
}

func Validate(key string) error {
	if len(key) < MinKeyLength {
		return ErrKeyTooShort
	}

	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}

	if !validKeyPattern.MatchString(key) {
		return ErrKeyInvalid
	}

	return nil
}

// BuildCacheKey returns "idempotency:{node}:{digest}". The credential name
// only enters the digest.
func BuildCacheKey(scope Scope, key string) string {
	return KeyPrefix + ":" + scope.Node + ":" + digest(scope.Credential, key)
}

// Fingerprint identifies a request payload.
func Fingerprint(body []byte) string {
	sum := sha256.Sum256(body)

	return hex.EncodeToString(sum[:])
}

func digest(parts ...string) string {
	hash := sha256.New()

	for _, part := range parts {
		hash.Write([]byte(part))
		hash.Write([]byte{0})
	}

	return hex.EncodeToString(hash.Sum(nil))
}
