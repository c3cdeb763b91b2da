package security_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shopfront-backend/pkg/config"
	"github.com/angelmondragon/shopfront-backend/pkg/security"
)

func params(memoryKB, passes int) config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    memoryKB,
		ArgonTime:        passes,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestPasswordHashVerifies(t *testing.T) {
	hash, err := security.HashPassword("correct horse battery", params(16384, 1))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"), "unexpected encoding %q", hash)

	for _, tc := range []struct {
		password string
		want     bool
	}{
		{"correct horse battery", true},
		{"correct horse batterY", false},
		{"", false},
	} {
		ok, err := security.VerifyPassword(tc.password, hash)
		require.NoError(t, err)
		assert.Equal(t, tc.want, ok, "password %q", tc.password)
	}
}

func TestPasswordHashesAreSalted(t *testing.T) {
	cfg := params(8192, 1)
	first, err := security.HashPassword("same-input", cfg)
	require.NoError(t, err)
	second, err := security.HashPassword("same-input", cfg)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	for _, encoded := range []string{"", "not-a-hash", "$argon2i$v=19$m=1,t=1,p=1$c2FsdA$a2V5", "$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5"} {
		_, err := security.VerifyPassword("irrelevant", encoded)
		assert.Error(t, err, "hash %q", encoded)
	}
}

func TestNeedsRehashTracksParams(t *testing.T) {
	weak, strong := params(8192, 1), params(16384, 2)

	hash, err := security.HashPassword("hunter22", weak)
	require.NoError(t, err)

	assert.False(t, security.NeedsRehash(hash, weak))
	assert.True(t, security.NeedsRehash(hash, strong))
	assert.True(t, security.NeedsRehash("garbage", weak))
}
