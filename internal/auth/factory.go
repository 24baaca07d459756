package auth

import (
	"fmt"

	"github.com/telecomnet/telecom-social/internal/config"
)

// NewAuthenticator creates the Authenticator selected by cfg.AuthMode.
func NewAuthenticator(cfg *config.Config) (Authenticator, error) {
	switch cfg.AuthMode {
	case config.AuthModeJWT:
		return NewJWTAuthenticator(cfg.JWTSecret, cfg.JWTIssuer), nil
	case config.AuthModeDev:
		if cfg.IsProduction() {
			return nil, ErrDevTokenInProduction
		}
		return NewDevAuthenticator(), nil
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", cfg.AuthMode)
	}
}
