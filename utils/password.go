package utils

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong is returned for passwords bcrypt cannot hash (over 72 bytes).
var ErrPasswordTooLong = fmt.Errorf("password longer than 72 bytes: %w", ErrBadRequest)

// PasswordHasher produces and checks bcrypt hashes. It holds no mutable state.
type PasswordHasher struct {
	cost int
	// dummy is compared against when the user does not exist. It shares the
	// hasher's cost so a failed login takes as long either way.
	dummy []byte
}

// NewPasswordHasher returns a hasher using the given bcrypt cost; out of range values fall back to bcrypt.DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	// Only a failing entropy source can make this error.
	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password"), cost)
	if err != nil {
		panic(fmt.Sprintf("generate dummy bcrypt hash: %v", err))
	}
	return &PasswordHasher{cost: cost, dummy: dummy}
}

// Hash returns a salted bcrypt hash. Algorithm, cost and salt are embedded in the result.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("%w: %v", ErrHashingFailure, err)
	}
	return string(hash), nil
}

// Verify compares the plaintext against a stored hash in constant time.
// A mismatch is (false, nil); a malformed stored hash is (false, ErrHashingFailure).
func (h *PasswordHasher) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrHashingFailure, err)
	}
}

// VerifyDummy burns one bcrypt comparison and always reports a mismatch.
func (h *PasswordHasher) VerifyDummy(password string) bool {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
	return false
}
