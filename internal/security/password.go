package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PassphraseHasher derives and checks the bcrypt digest guarding the device
// profile. A zero cost selects bcrypt's default; tests pass a low cost.
type PassphraseHasher struct {
	cost int
}

func NewPassphraseHasher(cost int) *PassphraseHasher {
	return &PassphraseHasher{cost: cost}
}

func (h *PassphraseHasher) Hash(plain string) (string, error) {
	cost := h.cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash passphrase: %w", err)
	}
	return string(digest), nil
}

// Verify returns nil when plain matches the stored digest.
func (h *PassphraseHasher) Verify(plain, hashed string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)); err != nil {
		return fmt.Errorf("verify passphrase: %w", err)
	}
	return nil
}
