// Package service implements ShoeFit's business operations on top of the
// store. Services validate input, enforce ownership and translate store
// errors into domain errors that the API layer maps to HTTP responses.
package service

import (
	"log/slog"

	"github.com/shoefit/shoefit-server/internal/validation"
)

// validate is the shared request validator.
var validate = validation.New()

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
