package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/shoefit/shoefit-server/internal/http/response"
)

func (s *Server) registerCatalogImageRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:  "uploadCatalogImage",
		Method:       http.MethodPut,
		Path:         "/api/v1/admin/catalog/{id}/image",
		Summary:      "Upload catalog image",
		Description:  "Stores a JPEG, PNG, GIF or WebP image for a catalog shoe, replacing any previous one. Admin only.",
		Tags:         []string{"Admin"},
		Security:     bearerSecurity,
		MaxBodyBytes: s.opts.MaxImageBytes + 1,
	}, s.handleUploadCatalogImage)

	// Images are served straight from chi so they can be cached and
	// revalidated without the JSON envelope.
	s.router.Get("/api/v1/catalog/{id}/image", s.handleServeCatalogImage)
}

// UploadCatalogImageInput contains the raw image upload.
type UploadCatalogImageInput struct {
	ID          string `path:"id" doc:"Catalog entry ID"`
	ContentType string `header:"Content-Type" doc:"Image content type"`
	RawBody     []byte
}

func (s *Server) handleUploadCatalogImage(ctx context.Context, input *UploadCatalogImageInput) (*CatalogEntryOutput, error) {
	adminID, err := RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("catalog image upload",
		"entry_id", input.ID,
		"admin_id", adminID,
		"content_type", input.ContentType,
		"body_size", len(input.RawBody),
	)

	entry, err := s.services.Catalog.UploadImage(ctx, input.ID, input.RawBody)
	if err != nil {
		return nil, err
	}

	return &CatalogEntryOutput{Body: mapCatalogEntry(entry)}, nil
}

func (s *Server) handleServeCatalogImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	img, err := s.services.Catalog.GetImage(r.Context(), id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("ETag", img.ETag)
	w.Header().Set("Cache-Control", CacheOneWeek)

	if match := r.Header.Get("If-None-Match"); match != "" && match == img.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", img.Format.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	if !img.ModTime.IsZero() {
		w.Header().Set("Last-Modified", img.ModTime.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.Data); err != nil {
		s.logger.Debug("catalog image write failed", "entry_id", id, "error", err)
	}
}
