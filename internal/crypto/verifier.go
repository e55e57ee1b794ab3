package crypto

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cache is the subset of the bcrypt cache the verifier needs.
type Cache interface {
	Get(ctx context.Context, bcryptHash string) (string, bool, error)
	Set(ctx context.Context, bcryptHash, passwordMD5 string) error
}

// Verifier checks the client's md5 password against the stored bcrypt
// hash. Successful comparisons are cached so repeat logins cost one
// cache read instead of a bcrypt round.
type Verifier struct {
	cache Cache
}

func NewVerifier(cache Cache) *Verifier {
	return &Verifier{cache: cache}
}

// Verify reports whether passwordMD5 matches bcryptHash. A cached entry
// settles the check either way without touching bcrypt.
func (v *Verifier) Verify(ctx context.Context, passwordMD5, bcryptHash string) (bool, error) {
	cachedMD5, ok, err := v.cache.Get(ctx, bcryptHash)
	if err != nil {
		return false, err
	}
	if ok {
		return passwordMD5 == cachedMD5, nil
	}

	err = bcrypt.CompareHashAndPassword([]byte(bcryptHash), []byte(passwordMD5))
	if err == bcrypt.ErrMismatchedHashAndPassword {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("comparing bcrypt hash: %w", err)
	}

	if err := v.cache.Set(ctx, bcryptHash, passwordMD5); err != nil {
		return false, err
	}
	return true, nil
}
