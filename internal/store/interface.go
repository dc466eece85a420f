// Package store defines the persistence interface for the ShoeFit server.
package store

import (
	"context"

	"github.com/shoefit/shoefit-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
	CountUsers(ctx context.Context) (int, error)

	// Auth Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	ListUserSessions(ctx context.Context, userID string) ([]*domain.Session, error)
	DeleteAllUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Catalog
	CreateCatalogEntry(ctx context.Context, entry *domain.CatalogEntry) error
	GetCatalogEntry(ctx context.Context, id string) (*domain.CatalogEntry, error)
	GetCatalogEntryByBrandModel(ctx context.Context, brand, model string) (*domain.CatalogEntry, error)
	UpdateCatalogEntry(ctx context.Context, entry *domain.CatalogEntry) error
	DeleteCatalogEntry(ctx context.Context, id string) error
	ListCatalog(ctx context.Context, query string, params PaginationParams) (*PaginatedResult[*domain.CatalogEntry], error)
	ListAllCatalog(ctx context.Context) ([]*domain.CatalogEntry, error)
	CountCatalog(ctx context.Context) (int, error)

	// Owned shoes
	CreateShoe(ctx context.Context, shoe *domain.OwnedShoe) error
	GetShoe(ctx context.Context, id string) (*domain.OwnedShoe, error)
	ListShoesByUser(ctx context.Context, userID string) ([]*domain.OwnedShoe, error)
	DeleteShoe(ctx context.Context, userID, id string) error
}
