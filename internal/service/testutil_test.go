package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoefit/shoefit-server/internal/auth"
	"github.com/shoefit/shoefit-server/internal/cache"
	"github.com/shoefit/shoefit-server/internal/domain"
	domainerrors "github.com/shoefit/shoefit-server/internal/errors"
	"github.com/shoefit/shoefit-server/internal/media/images"
	"github.com/shoefit/shoefit-server/internal/metrics"
	"github.com/shoefit/shoefit-server/internal/recommend"
	"github.com/shoefit/shoefit-server/internal/search"
	"github.com/shoefit/shoefit-server/internal/store/sqlite"
)

// cheapParams keeps password hashing fast in tests.
var cheapParams = auth.PasswordParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type testEnv struct {
	store   *sqlite.Store
	tokens  *auth.TokenService
	cache   *cache.Cache
	metrics *metrics.Metrics

	sessions        *SessionService
	auth            *AuthService
	catalog         *CatalogService
	shoes           *ShoeService
	recommendations *RecommendationService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	st, err := sqlite.Open(filepath.Join(dir, "shoefit.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	c, err := cache.Open(cache.Options{InMemory: true, TTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	idx, err := search.NewSearchIndex(search.Options{DataPath: filepath.Join(dir, "search")})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	imgStorage, err := images.NewStorage(filepath.Join(dir, "images"))
	require.NoError(t, err)
	processor := images.NewProcessor(imgStorage, 1<<20, nil)

	m := metrics.New()

	sessions := NewSessionService(st, tokens, nil)
	authSvc := NewAuthService(st, tokens, sessions, m, nil)
	authSvc.SetPasswordParams(cheapParams)
	catalog := NewCatalogService(st, idx, processor, nil)

	return &testEnv{
		store:           st,
		tokens:          tokens,
		cache:           c,
		metrics:         m,
		sessions:        sessions,
		auth:            authSvc,
		catalog:         catalog,
		shoes:           NewShoeService(st, c, nil),
		recommendations: NewRecommendationService(st, catalog, recommend.NewEngine(recommend.PolicyMixed), c, m, nil),
	}
}

func (e *testEnv) register(t *testing.T, email string) *AuthResponse {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), RegisterRequest{
		Email:    email,
		Password: "password123",
	})
	require.NoError(t, err)
	return resp
}

func (e *testEnv) addCatalog(t *testing.T, brand, model, category string) *domain.CatalogEntry {
	t.Helper()
	entry, err := e.catalog.Create(context.Background(), CreateCatalogEntryRequest{
		Brand:    brand,
		Model:    model,
		Category: category,
	})
	require.NoError(t, err)
	return entry
}

func (e *testEnv) addShoe(t *testing.T, userID, catalogID, size, fit string) *domain.OwnedShoe {
	t.Helper()
	shoe, err := e.shoes.Add(context.Background(), userID, AddShoeRequest{
		CatalogID: catalogID,
		Size:      size,
		Fit:       fit,
	})
	require.NoError(t, err)
	return shoe
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func assertCode(t *testing.T, err error, code domainerrors.Code) {
	t.Helper()
	var de *domainerrors.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, code, de.Code)
}
