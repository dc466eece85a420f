package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheapParams keeps the tests fast.
var cheapParams = PasswordParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))
	assert.True(t, VerifyPassword(hash, "correct horse battery staple"))
	assert.False(t, VerifyPassword(hash, "Correct horse battery staple"))
}

func TestHash_UniqueSalt(t *testing.T) {
	a, err := cheapParams.Hash("password123")
	require.NoError(t, err)
	b, err := cheapParams.Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, VerifyPassword(a, "password123"))
	assert.True(t, VerifyPassword(b, "password123"))
}

func TestHash_RejectsBadInput(t *testing.T) {
	_, err := cheapParams.Hash("")
	assert.Error(t, err)

	_, err = cheapParams.Hash(strings.Repeat("x", MaxPasswordLength+1))
	assert.Error(t, err)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	for _, h := range []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$!!$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$",
	} {
		assert.False(t, VerifyPassword(h, "anything"), "hash %q", h)
	}
}

func TestVerifyPassword_TooLong(t *testing.T) {
	hash, err := cheapParams.Hash("short")
	require.NoError(t, err)

	assert.False(t, VerifyPassword(hash, strings.Repeat("x", MaxPasswordLength+1)))
}

func TestNeedsRehash(t *testing.T) {
	cheap, err := cheapParams.Hash("password123")
	require.NoError(t, err)
	assert.True(t, NeedsRehash(cheap))
	assert.True(t, NeedsRehash("garbage"))

	current, err := HashPassword("password123")
	require.NoError(t, err)
	assert.False(t, NeedsRehash(current))
	assert.True(t, cheapParams.NeedsRehash(current))
	assert.False(t, cheapParams.NeedsRehash(cheap))
}
