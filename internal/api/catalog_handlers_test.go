package api

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoefit/shoefit-server/internal/color"
	"github.com/shoefit/shoefit-server/internal/search"
)

func TestCatalog_AdminCreatesMemberReads(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.setupAdmin(t)
	member := ts.registerMember(t, "runner@example.com")

	created := ts.createCatalogEntry(t, admin, "Nike", "Pegasus 40")
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Nike", created.Brand)

	resp := ts.api.Get("/api/v1/catalog/"+created.ID, bearer(member))
	require.Equal(t, http.StatusOK, resp.Code)
	got := decode[CatalogEntryResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Pegasus 40", got.Model)
	assert.Equal(t, color.ForBrand("nike"), got.Color)
}

func TestCatalog_CreateRequiresAdmin(t *testing.T) {
	ts := setupTestServer(t)
	ts.setupAdmin(t)
	member := ts.registerMember(t, "runner@example.com")

	resp := ts.api.Post("/api/v1/admin/catalog", bearer(member), map[string]any{
		"brand": "Nike",
		"model": "Pegasus",
	})

	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "FORBIDDEN", decode[any](t, resp.Body.Bytes()).Code)
}

func TestCatalog_CreateDuplicate(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.setupAdmin(t)
	ts.createCatalogEntry(t, admin, "Nike", "Pegasus")

	resp := ts.api.Post("/api/v1/admin/catalog", bearer(admin), map[string]any{
		"brand": "nike",
		"model": "PEGASUS",
	})

	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestCatalog_CreateBlankBrand(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.setupAdmin(t)

	resp := ts.api.Post("/api/v1/admin/catalog", bearer(admin), map[string]any{
		"brand": "   ",
		"model": "Pegasus",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION", decode[any](t, resp.Body.Bytes()).Code)
}

func TestCatalog_ReadRequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	for _, path := range []string{"/api/v1/catalog", "/api/v1/catalog/search?q=nike", "/api/v1/catalog/cat-x"} {
		resp := ts.api.Get(path)
		assert.Equal(t, http.StatusUnauthorized, resp.Code, path)
	}
}

func TestCatalog_ListFilterAndPaging(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.setupAdmin(t)
	ts.createCatalogEntry(t, admin, "Nike", "Pegasus")
	ts.createCatalogEntry(t, admin, "Adidas", "Samba")
	ts.createCatalogEntry(t, admin, "Nike", "Vomero")

	resp := ts.api.Get("/api/v1/catalog", bearer(admin))
	require.Equal(t, http.StatusOK, resp.Code)
	page := decode[CatalogListResponse](t, resp.Body.Bytes()).Data
	require.Len(t, page.Items, 3)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, "Adidas", page.Items[0].Brand)

	resp = ts.api.Get("/api/v1/catalog?q=NIKE&limit=1", bearer(admin))
	require.Equal(t, http.StatusOK, resp.Code)
	page = decode[CatalogListResponse](t, resp.Body.Bytes()).Data
	require.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Total)
	assert.True(t, page.HasMore)
	assert.Equal(t, "Pegasus", page.Items[0].Model)

	resp = ts.api.Get("/api/v1/catalog?limit=500", bearer(admin))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestCatalog_Search(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.setupAdmin(t)
	pegasus := ts.createCatalogEntry(t, admin, "Nike", "Pegasus")
	ts.createCatalogEntry(t, admin, "Adidas", "Samba")

	resp := ts.api.Get("/api/v1/catalog/search?q=pegasus", bearer(admin))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	result := decode[search.SearchResult](t, resp.Body.Bytes()).Data
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, pegasus.ID, result.Hits[0].ID)
}

func TestCatalog_GetMissing(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.setupAdmin(t)

	resp := ts.api.Get("/api/v1/catalog/cat-missing", bearer(admin))

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decode[any](t, resp.Body.Bytes()).Code)
}

func TestCatalog_Delete(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.setupAdmin(t)
	member := ts.registerMember(t, "runner@example.com")
	entry := ts.createCatalogEntry(t, admin, "Nike", "Pegasus")

	resp := ts.api.Delete("/api/v1/admin/catalog/"+entry.ID, bearer(member))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Delete("/api/v1/admin/catalog/"+entry.ID, bearer(admin))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/catalog/"+entry.ID, bearer(admin))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Delete("/api/v1/admin/catalog/"+entry.ID, bearer(admin))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCatalogImage_UploadAndServe(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.setupAdmin(t)
	entry := ts.createCatalogEntry(t, admin, "Nike", "Pegasus")
	img := testPNG(t, 32, 24)

	resp := ts.api.Put("/api/v1/admin/catalog/"+entry.ID+"/image",
		bearer(admin), "Content-Type: image/png", bytes.NewReader(img))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	updated := decode[CatalogEntryResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, "/api/v1/catalog/"+entry.ID+"/image", updated.ImageURL)
	assert.NotEmpty(t, updated.BlurHash)

	resp = ts.api.Get(updated.ImageURL)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "image/png", resp.Header().Get("Content-Type"))
	assert.Equal(t, CacheOneWeek, resp.Header().Get("Cache-Control"))
	assert.Equal(t, img, resp.Body.Bytes())

	etag := resp.Header().Get("ETag")
	require.NotEmpty(t, etag)

	resp = ts.api.Get(updated.ImageURL, "If-None-Match: "+etag)
	assert.Equal(t, http.StatusNotModified, resp.Code)
	assert.Empty(t, resp.Body.Bytes())
}

func TestCatalogImage_Rejections(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.setupAdmin(t)
	member := ts.registerMember(t, "runner@example.com")
	entry := ts.createCatalogEntry(t, admin, "Nike", "Pegasus")
	path := "/api/v1/admin/catalog/" + entry.ID + "/image"

	resp := ts.api.Put(path, bearer(member), bytes.NewReader(testPNG(t, 8, 8)))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Put(path, bearer(admin), bytes.NewReader([]byte("definitely not an image")))
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.Code)

	resp = ts.api.Put(path, bearer(admin), bytes.NewReader(make([]byte, 2<<20)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)

	resp = ts.api.Put("/api/v1/admin/catalog/cat-missing/image", bearer(admin), bytes.NewReader(testPNG(t, 8, 8)))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCatalogImage_NoImage(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.setupAdmin(t)
	entry := ts.createCatalogEntry(t, admin, "Nike", "Pegasus")

	resp := ts.api.Get("/api/v1/catalog/" + entry.ID + "/image")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	env := decode[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
}
