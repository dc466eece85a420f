package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/shoefit/shoefit-server/internal/auth"
	"github.com/shoefit/shoefit-server/internal/cache"
	"github.com/shoefit/shoefit-server/internal/media/images"
	"github.com/shoefit/shoefit-server/internal/metrics"
	"github.com/shoefit/shoefit-server/internal/recommend"
	"github.com/shoefit/shoefit-server/internal/search"
	"github.com/shoefit/shoefit-server/internal/service"
	"github.com/shoefit/shoefit-server/internal/store/sqlite"
)

// testEnvelope mirrors the response envelope with a typed data field.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details"`
}

type testServer struct {
	*Server
	api     humatest.TestAPI
	metrics *metrics.Metrics
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWithOptions(t, Options{
		AuthRateLimit: 100,
		AuthRateBurst: 100,
		MaxImageBytes: 1 << 20,
	})
}

func setupTestServerWithOptions(t *testing.T, opts Options) *testServer {
	t.Helper()
	dir := t.TempDir()

	st, err := sqlite.Open(filepath.Join(dir, "shoefit.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
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
	processor := images.NewProcessor(imgStorage, opts.MaxImageBytes, nil)

	m := metrics.New()

	sessions := service.NewSessionService(st, tokens, nil)
	authSvc := service.NewAuthService(st, tokens, sessions, m, nil)
	authSvc.SetPasswordParams(auth.PasswordParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	catalog := service.NewCatalogService(st, idx, processor, nil)

	services := &Services{
		Auth:           authSvc,
		Session:        sessions,
		Catalog:        catalog,
		Shoe:           service.NewShoeService(st, c, nil),
		Recommendation: service.NewRecommendationService(st, catalog, recommend.NewEngine(recommend.PolicyMixed), c, m, nil),
	}

	srv := NewServer(st, services, idx, c, m, opts, nil)
	t.Cleanup(srv.Close)

	return &testServer{
		Server:  srv,
		api:     humatest.Wrap(t, srv.API()),
		metrics: m,
	}
}

// decode unmarshals an enveloped response body.
func decode[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	return env
}

// setupAdmin runs first-time setup and returns the admin's access token.
func (ts *testServer) setupAdmin(t *testing.T) string {
	t.Helper()
	resp := ts.api.Post("/api/v1/auth/setup", map[string]any{
		"email":    "admin@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.Code, "setup failed: %s", resp.Body.String())
	return decode[AuthResponse](t, resp.Body.Bytes()).Data.AccessToken
}

// registerMember registers a member account and returns its access token.
func (ts *testServer) registerMember(t *testing.T, email string) string {
	t.Helper()
	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.Code, "register failed: %s", resp.Body.String())
	return decode[AuthResponse](t, resp.Body.Bytes()).Data.AccessToken
}

func (ts *testServer) createCatalogEntry(t *testing.T, adminToken, brand, model string) CatalogEntryResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/admin/catalog", bearer(adminToken), map[string]any{
		"brand": brand,
		"model": model,
	})
	require.Equal(t, http.StatusCreated, resp.Code, "create catalog failed: %s", resp.Body.String())
	return decode[CatalogEntryResponse](t, resp.Body.Bytes()).Data
}

func (ts *testServer) addShoe(t *testing.T, token, catalogID, size, fit string) ShoeResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/shoes", bearer(token), map[string]any{
		"catalog_id": catalogID,
		"size":       size,
		"fit":        fit,
	})
	require.Equal(t, http.StatusCreated, resp.Code, "add shoe failed: %s", resp.Body.String())
	return decode[ShoeResponse](t, resp.Body.Bytes()).Data
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
