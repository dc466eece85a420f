package providers

import (
	"github.com/samber/do/v2"

	"github.com/shoefit/shoefit-server/internal/auth"
	"github.com/shoefit/shoefit-server/internal/config"
	"github.com/shoefit/shoefit-server/internal/logger"
)

// AuthKey wraps the authentication key bytes.
type AuthKey []byte

// ProvideAuthKey resolves the token key from config or the data directory.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.ResolveKey(cfg.Auth.TokenKey, cfg.Data.BasePath)
	if err != nil {
		return nil, err
	}

	log.Info("Authentication key loaded",
		"from_config", cfg.Auth.TokenKey != "",
		"access_token_duration", cfg.Auth.AccessTokenDuration,
		"refresh_token_duration", cfg.Auth.RefreshTokenDuration,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService([]byte(authKey), cfg.Auth.AccessTokenDuration, cfg.Auth.RefreshTokenDuration)
}
