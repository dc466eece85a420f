package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoefit/shoefit-server/internal/cache"
	"github.com/shoefit/shoefit-server/internal/domain"
	domainerrors "github.com/shoefit/shoefit-server/internal/errors"
)

func TestShoeService_Add(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "runner@example.com")
	entry := env.addCatalog(t, "Nike", "Pegasus", "Running")

	shoe, err := env.shoes.Add(ctx, user.User.ID, AddShoeRequest{
		CatalogID:  entry.ID,
		Size:       " 10.5 ",
		SizeSystem: "uk",
		Fit:        "too small",
	})
	require.NoError(t, err)
	assert.Equal(t, "Nike", shoe.Brand)
	assert.Equal(t, "Pegasus", shoe.Model)
	assert.Equal(t, "10.5", shoe.Size)
	assert.Equal(t, domain.SizeSystemUK, shoe.SizeSystem)
	assert.Equal(t, domain.FitTooSmall, shoe.Fit)
	assert.Equal(t, user.User.ID, shoe.UserID)
}

func TestShoeService_AddDefaults(t *testing.T) {
	env := setupTestEnv(t)
	user := env.register(t, "runner@example.com")
	entry := env.addCatalog(t, "Nike", "Pegasus", "")

	shoe := env.addShoe(t, user.User.ID, entry.ID, "10", "")

	assert.Equal(t, domain.FitPerfect, shoe.Fit)
	assert.Equal(t, domain.SizeSystemUS, shoe.SizeSystem)
}

func TestShoeService_AddValidation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "runner@example.com")
	entry := env.addCatalog(t, "Nike", "Pegasus", "")

	tests := []struct {
		name string
		req  AddShoeRequest
	}{
		{"no catalog", AddShoeRequest{Size: "10"}},
		{"no size", AddShoeRequest{CatalogID: entry.ID}},
		{"bad size", AddShoeRequest{CatalogID: entry.ID, Size: "ten"}},
		{"negative size", AddShoeRequest{CatalogID: entry.ID, Size: "-1"}},
		{"huge size", AddShoeRequest{CatalogID: entry.ID, Size: "99"}},
		{"bad system", AddShoeRequest{CatalogID: entry.ID, Size: "10", SizeSystem: "mars"}},
		{"bad fit", AddShoeRequest{CatalogID: entry.ID, Size: "10", Fit: "snug"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.shoes.Add(ctx, user.User.ID, tt.req)
			assertCode(t, err, domainerrors.CodeValidation)
		})
	}

	_, err := env.shoes.Add(ctx, user.User.ID, AddShoeRequest{CatalogID: "cat-missing", Size: "10"})
	assertCode(t, err, domainerrors.CodeNotFound)
}

func TestShoeService_ListIsPerUser(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com")
	bob := env.register(t, "bob@example.com")
	entry := env.addCatalog(t, "Nike", "Pegasus", "")

	env.addShoe(t, alice.User.ID, entry.ID, "9", "perfect")
	env.addShoe(t, alice.User.ID, entry.ID, "9.5", "too_large")
	env.addShoe(t, bob.User.ID, entry.ID, "11", "perfect")

	shoes, err := env.shoes.List(ctx, alice.User.ID)
	require.NoError(t, err)
	assert.Len(t, shoes, 2)
	for _, s := range shoes {
		assert.Equal(t, alice.User.ID, s.UserID)
	}
}

func TestShoeService_Delete(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com")
	bob := env.register(t, "bob@example.com")
	entry := env.addCatalog(t, "Nike", "Pegasus", "")
	shoe := env.addShoe(t, alice.User.ID, entry.ID, "9", "perfect")

	// Another user's shoe looks missing.
	err := env.shoes.Delete(ctx, bob.User.ID, shoe.ID)
	assertCode(t, err, domainerrors.CodeNotFound)

	require.NoError(t, env.shoes.Delete(ctx, alice.User.ID, shoe.ID))

	err = env.shoes.Delete(ctx, alice.User.ID, shoe.ID)
	assertCode(t, err, domainerrors.CodeNotFound)
}

func TestShoeService_InvalidatesRecommendations(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "runner@example.com")
	entry := env.addCatalog(t, "Nike", "Pegasus", "")

	genKey := cache.UserGenerationKey(user.User.ID)
	key := cache.RecommendationKey(user.User.ID, 0, entry.ID, "")
	require.NoError(t, env.cache.Set(ctx, key, "stale"))

	env.addShoe(t, user.User.ID, entry.ID, "10", "perfect")

	var v string
	hit, err := env.cache.Get(ctx, key, &v)
	require.NoError(t, err)
	assert.False(t, hit)

	gen, err := env.cache.Generation(ctx, genKey)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)
}

func TestShoeService_InvalidateIgnoresCancellation(t *testing.T) {
	env := setupTestEnv(t)
	user := env.register(t, "runner@example.com")
	entry := env.addCatalog(t, "Nike", "Pegasus", "")
	key := cache.RecommendationKey(user.User.ID, 0, entry.ID, "")
	require.NoError(t, env.cache.Set(context.Background(), key, "stale"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	env.shoes.invalidate(ctx, user.User.ID)

	gen, err := env.cache.Generation(context.Background(), cache.UserGenerationKey(user.User.ID))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)

	var v string
	hit, err := env.cache.Get(context.Background(), key, &v)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestShoeService_NilCache(t *testing.T) {
	env := setupTestEnv(t)
	user := env.register(t, "runner@example.com")
	entry := env.addCatalog(t, "Nike", "Pegasus", "")
	svc := NewShoeService(env.store, nil, nil)

	_, err := svc.Add(context.Background(), user.User.ID, AddShoeRequest{CatalogID: entry.ID, Size: "10"})
	assert.NoError(t, err)
}
