package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shoefit/shoefit-server/internal/auth"
	"github.com/shoefit/shoefit-server/internal/config"
	"github.com/shoefit/shoefit-server/internal/domain"
	domainerrors "github.com/shoefit/shoefit-server/internal/errors"
	"github.com/shoefit/shoefit-server/internal/media/download"
	"github.com/shoefit/shoefit-server/internal/media/images"
	"github.com/shoefit/shoefit-server/internal/search"
	"github.com/shoefit/shoefit-server/internal/service"
	"github.com/shoefit/shoefit-server/internal/store"
	"github.com/shoefit/shoefit-server/internal/store/sqlite"
)

// SeedFile is the YAML document the tool applies.
type SeedFile struct {
	Catalog []CatalogSeed `yaml:"catalog"`
	Users   []UserSeed    `yaml:"users"`
	Shoes   []ShoeSeed    `yaml:"shoes"`
}

// CatalogSeed is one catalog shoe.
type CatalogSeed struct {
	Brand    string `yaml:"brand"`
	Model    string `yaml:"model"`
	Category string `yaml:"category"`
	ImageURL string `yaml:"image_url"`
}

// UserSeed is one account. Role defaults to member.
type UserSeed struct {
	Email       string `yaml:"email"`
	Password    string `yaml:"password"`
	DisplayName string `yaml:"display_name"`
	Role        string `yaml:"role"`
}

// ShoeSeed is a shoe owned by the user with the given email. The catalog
// entry is looked up by brand and model.
type ShoeSeed struct {
	User       string `yaml:"user"`
	Brand      string `yaml:"brand"`
	Model      string `yaml:"model"`
	Size       string `yaml:"size"`
	SizeSystem string `yaml:"size_system"`
	Fit        string `yaml:"fit"`
}

// LoadSeedFile reads and decodes a seed file. Unknown keys are rejected.
func LoadSeedFile(path string) (*SeedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	var file SeedFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &file, nil
}

// Report counts what a seed run did.
type Report struct {
	CatalogCreated int
	CatalogSkipped int
	Images         int
	UsersCreated   int
	UsersSkipped   int
	ShoesCreated   int
	ShoesSkipped   int
}

// Seeder applies seed files through the same services the API uses.
type Seeder struct {
	SkipImages bool

	store      *sqlite.Store
	index      *search.SearchIndex
	catalog    *service.CatalogService
	auth       *service.AuthService
	shoes      *service.ShoeService
	downloader *download.Downloader
	logger     *slog.Logger
}

// OpenSeeder opens the data directory described by cfg.
func OpenSeeder(cfg *config.Config, logger *slog.Logger) (*Seeder, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	st, err := sqlite.Open(cfg.DatabasePath(), logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	idx, err := search.NewSearchIndex(search.Options{DataPath: cfg.SearchPath(), Logger: logger})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("open search index: %w", err)
	}

	imgStorage, err := images.NewStorage(cfg.ImagesPath())
	if err != nil {
		idx.Close()
		st.Close()
		return nil, fmt.Errorf("open image storage: %w", err)
	}

	key, err := auth.ResolveKey(cfg.Auth.TokenKey, cfg.Data.BasePath)
	if err != nil {
		idx.Close()
		st.Close()
		return nil, err
	}
	tokens, err := auth.NewTokenService(key, cfg.Auth.AccessTokenDuration, cfg.Auth.RefreshTokenDuration)
	if err != nil {
		idx.Close()
		st.Close()
		return nil, err
	}

	sessions := service.NewSessionService(st, tokens, logger)

	return &Seeder{
		store:      st,
		index:      idx,
		catalog:    service.NewCatalogService(st, idx, images.NewProcessor(imgStorage, cfg.Server.MaxImageBytes, logger), logger),
		auth:       service.NewAuthService(st, tokens, sessions, nil, logger),
		shoes:      service.NewShoeService(st, nil, logger),
		downloader: download.NewDownloader(nil, cfg.Server.MaxImageBytes, logger),
		logger:     logger,
	}, nil
}

// Close releases the search index and the store.
func (s *Seeder) Close() error {
	return errors.Join(s.index.Close(), s.store.Close())
}

// Apply seeds the catalog, then users, then their shoes. Records that
// already exist are left untouched. A failed image download is logged and
// does not stop the run.
func (s *Seeder) Apply(ctx context.Context, file *SeedFile) (*Report, error) {
	report := &Report{}

	for _, c := range file.Catalog {
		if err := s.seedCatalog(ctx, c, report); err != nil {
			return report, err
		}
	}

	users := make(map[string]string, len(file.Users))
	for _, u := range file.Users {
		userID, err := s.seedUser(ctx, u, report)
		if err != nil {
			return report, err
		}
		users[strings.ToLower(strings.TrimSpace(u.Email))] = userID
	}

	for _, sh := range file.Shoes {
		if err := s.seedShoe(ctx, sh, users, report); err != nil {
			return report, err
		}
	}

	return report, nil
}

func (s *Seeder) seedCatalog(ctx context.Context, c CatalogSeed, report *Report) error {
	entry, err := s.catalog.Create(ctx, service.CreateCatalogEntryRequest{
		Brand:    c.Brand,
		Model:    c.Model,
		Category: c.Category,
	})
	switch {
	case errors.Is(err, domainerrors.ErrAlreadyExists):
		report.CatalogSkipped++
		s.logger.Debug("catalog entry exists", "brand", c.Brand, "model", c.Model)
		return nil
	case err != nil:
		return fmt.Errorf("catalog %s %s: %w", c.Brand, c.Model, err)
	}
	report.CatalogCreated++

	if c.ImageURL == "" || s.SkipImages {
		return nil
	}

	data, err := s.downloader.Fetch(ctx, c.ImageURL)
	if err != nil {
		s.logger.Warn("image download failed", "entry_id", entry.ID, "url", c.ImageURL, "error", err)
		return nil
	}
	if _, err := s.catalog.UploadImage(ctx, entry.ID, data); err != nil {
		s.logger.Warn("image rejected", "entry_id", entry.ID, "url", c.ImageURL, "error", err)
		return nil
	}
	report.Images++
	return nil
}

func (s *Seeder) seedUser(ctx context.Context, u UserSeed, report *Report) (string, error) {
	existing, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(u.Email))
	if err == nil {
		report.UsersSkipped++
		return existing.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("lookup user %s: %w", u.Email, err)
	}

	role := domain.RoleMember
	if u.Role != "" {
		role = domain.Role(strings.ToLower(strings.TrimSpace(u.Role)))
	}

	user, err := s.auth.CreateUser(ctx, u.Email, u.Password, u.DisplayName, role)
	if err != nil {
		return "", fmt.Errorf("user %s: %w", u.Email, err)
	}
	report.UsersCreated++
	s.logger.Info("user created", "user_id", user.ID, "email", user.Email, "role", user.Role)
	return user.ID, nil
}

func (s *Seeder) seedShoe(ctx context.Context, sh ShoeSeed, users map[string]string, report *Report) error {
	userID, ok := users[strings.ToLower(strings.TrimSpace(sh.User))]
	if !ok {
		return fmt.Errorf("shoe %s %s: user %q is not in the seed file", sh.Brand, sh.Model, sh.User)
	}

	entry, err := s.store.GetCatalogEntryByBrandModel(ctx, sh.Brand, sh.Model)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("shoe %s %s: not in the catalog", sh.Brand, sh.Model)
		}
		return fmt.Errorf("lookup catalog %s %s: %w", sh.Brand, sh.Model, err)
	}

	owned, err := s.shoes.List(ctx, userID)
	if err != nil {
		return err
	}
	size := strings.TrimSpace(sh.Size)
	for _, o := range owned {
		if o.CatalogID == entry.ID && o.Size == size {
			report.ShoesSkipped++
			return nil
		}
	}

	if _, err := s.shoes.Add(ctx, userID, service.AddShoeRequest{
		CatalogID:  entry.ID,
		Size:       size,
		SizeSystem: sh.SizeSystem,
		Fit:        sh.Fit,
	}); err != nil {
		return fmt.Errorf("shoe %s %s for %s: %w", sh.Brand, sh.Model, sh.User, err)
	}
	report.ShoesCreated++
	return nil
}
