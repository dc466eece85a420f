package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		id, err := Generate(PrefixShoe)
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{PrefixUser, PrefixSession, PrefixCatalog, PrefixShoe, PrefixToken} {
		t.Run(prefix, func(t *testing.T) {
			id, err := Generate(prefix)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(id, prefix+"-"))
			// NanoID default length is 21.
			assert.Len(t, id, len(prefix)+1+21)
			assert.True(t, HasPrefix(id, prefix))
		})
	}
}

func TestHasPrefix(t *testing.T) {
	assert.True(t, HasPrefix("shoe-abc", PrefixShoe))
	assert.False(t, HasPrefix("shoe-", PrefixShoe))
	assert.False(t, HasPrefix("cat-abc", PrefixShoe))
	assert.False(t, HasPrefix("shoeabc", PrefixShoe))
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		id := MustGenerate(PrefixCatalog)
		assert.True(t, strings.HasPrefix(id, "cat-"))
	})
}
