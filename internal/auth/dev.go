package auth

import (
	"context"
	"strings"
)

const (
	devPrefix      = "dev:"
	devAdminPrefix = "dev-admin:"
)

// DevAuthenticator accepts opaque local tokens: "dev:<userId>" for a member
// and "dev-admin:<userId>" for an administrator. Local development only.
type DevAuthenticator struct{}

func NewDevAuthenticator() *DevAuthenticator { return &DevAuthenticator{} }

func (DevAuthenticator) Authenticate(ctx context.Context, token string) (*Principal, error) {
	switch {
	case strings.HasPrefix(token, devAdminPrefix) && len(token) > len(devAdminPrefix):
		return &Principal{UserID: strings.TrimPrefix(token, devAdminPrefix), Admin: true}, nil
	case strings.HasPrefix(token, devPrefix) && len(token) > len(devPrefix):
		return &Principal{UserID: strings.TrimPrefix(token, devPrefix)}, nil
	}
	return nil, ErrInvalidToken
}

// DevToken builds the dev token for userID.
func DevToken(userID string, admin bool) string {
	if admin {
		return devAdminPrefix + userID
	}
	return devPrefix + userID
}
