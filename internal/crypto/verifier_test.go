package crypto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockCache struct {
	getFunc func(ctx context.Context, bcryptHash string) (string, bool, error)
	setFunc func(ctx context.Context, bcryptHash, passwordMD5 string) error
}

func (m *mockCache) Get(ctx context.Context, bcryptHash string) (string, bool, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, bcryptHash)
	}
	return "", false, nil
}

func (m *mockCache) Set(ctx context.Context, bcryptHash, passwordMD5 string) error {
	if m.setFunc != nil {
		return m.setFunc(ctx, bcryptHash, passwordMD5)
	}
	return nil
}

func TestVerifyCacheHit(t *testing.T) {
	setCalled := false
	v := NewVerifier(&mockCache{
		getFunc: func(ctx context.Context, bcryptHash string) (string, bool, error) {
			return "cachedmd5", true, nil
		},
		setFunc: func(ctx context.Context, bcryptHash, passwordMD5 string) error {
			setCalled = true
			return nil
		},
	})

	ok, err := v.Verify(context.Background(), "cachedmd5", "$2b$notevenahash")
	require.NoError(t, err)
	assert.True(t, ok, "matching cached md5 should verify without bcrypt")

	ok, err = v.Verify(context.Background(), "differentmd5", "$2b$notevenahash")
	require.NoError(t, err)
	assert.False(t, ok, "mismatching cached md5 should fail without bcrypt")

	assert.False(t, setCalled, "cache hits should not write back")
}

func TestVerifyCacheMiss(t *testing.T) {
	const passwordMD5 = "0cc175b9c0f1b6a831c399e269772661"

	hash, err := bcrypt.GenerateFromPassword([]byte(passwordMD5), bcrypt.MinCost)
	require.NoError(t, err)

	var setHash, setMD5 string
	v := NewVerifier(&mockCache{
		setFunc: func(ctx context.Context, bcryptHash, md5 string) error {
			setHash, setMD5 = bcryptHash, md5
			return nil
		},
	})

	ok, err := v.Verify(context.Background(), passwordMD5, string(hash))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, string(hash), setHash, "successful verify should be cached")
	assert.Equal(t, passwordMD5, setMD5)
}

func TestVerifyCacheMissWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("rightmd5"), bcrypt.MinCost)
	require.NoError(t, err)

	setCalled := false
	v := NewVerifier(&mockCache{
		setFunc: func(ctx context.Context, bcryptHash, md5 string) error {
			setCalled = true
			return nil
		},
	})

	ok, err := v.Verify(context.Background(), "wrongmd5", string(hash))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, setCalled, "failed verify must not be cached")
}
