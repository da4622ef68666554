// Package auth holds the credential mechanics: bcrypt password hashing, the
// registration token, and the session middleware that identifies the caller.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned by Verify when the password is wrong.
// Callers should not surface it verbatim — login reports the same message
// for a bad email and a bad password.
var ErrPasswordMismatch = errors.New("auth: password mismatch")

// defaultCost is the bcrypt work factor used when the config leaves it unset.
const defaultCost = 12

// PasswordService hashes and verifies passwords with bcrypt.
//
// The cost is injectable so tests can run at bcrypt's minimum cost instead
// of paying ~250ms per hash.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService. A cost of 0 selects the
// default; anything below bcrypt.MinCost is raised to the minimum.
func NewPasswordService(cost int) *PasswordService {
	if cost == 0 {
		cost = defaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	return &PasswordService{cost: cost}
}

// Hash hashes the plaintext password. The returned string embeds the salt
// and cost, so it is stored as-is in the users table.
//
// bcrypt silently truncates inputs past 72 bytes; reject them instead.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks a plaintext password against a stored hash. Returns nil on
// match, ErrPasswordMismatch on a wrong password, and a wrapped error for
// anything else (malformed hash). The comparison is constant-time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
