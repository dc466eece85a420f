package response

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/shoefit/shoefit-server/internal/errors"
	"github.com/shoefit/shoefit-server/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var result Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"message": "test"}, discardLogger())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	result := decode(t, w)
	assert.Equal(t, Version, result.V)
	assert.True(t, result.Success)
	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Error)
}

func TestJSON_ErrorStatus(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusNotFound, map[string]string{"message": "test"}, discardLogger())

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, decode(t, w).Success)
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter, string, *slog.Logger)
		status int
		code   domainerrors.Code
	}{
		{"bad request", BadRequest, http.StatusBadRequest, domainerrors.CodeValidation},
		{"unauthorized", Unauthorized, http.StatusUnauthorized, domainerrors.CodeUnauthorized},
		{"not found", NotFound, http.StatusNotFound, domainerrors.CodeNotFound},
		{"too many requests", TooManyRequests, http.StatusTooManyRequests, domainerrors.CodeRateLimited},
		{"internal", InternalError, http.StatusInternalServerError, domainerrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w, "boom", discardLogger())

			assert.Equal(t, tt.status, w.Code)
			result := decode(t, w)
			assert.False(t, result.Success)
			assert.Equal(t, "boom", result.Error)
			assert.Equal(t, string(tt.code), result.Code)
		})
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    domainerrors.Code
		message string
	}{
		{
			name:    "domain error",
			err:     fmt.Errorf("wrapped: %w", domainerrors.NotFound("shoe not found")),
			status:  http.StatusNotFound,
			code:    domainerrors.CodeNotFound,
			message: "shoe not found",
		},
		{
			name:    "store error",
			err:     store.ErrAlreadyExists,
			status:  http.StatusConflict,
			code:    domainerrors.CodeConflict,
			message: "resource already exists",
		},
		{
			name:    "unknown error",
			err:     errors.New("disk on fire"),
			status:  http.StatusInternalServerError,
			code:    domainerrors.CodeInternal,
			message: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err, discardLogger())

			assert.Equal(t, tt.status, w.Code)
			result := decode(t, w)
			assert.Equal(t, string(tt.code), result.Code)
			assert.Equal(t, tt.message, result.Error)
		})
	}
}

func TestHandleError_Details(t *testing.T) {
	w := httptest.NewRecorder()
	err := domainerrors.ValidationWithDetails("validation failed: size", map[string]string{"size": "invalid"})

	HandleError(w, err, discardLogger())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	result := decode(t, w)
	assert.Equal(t, map[string]any{"size": "invalid"}, result.Details)
}
