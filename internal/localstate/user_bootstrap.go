package localstate

import (
	"context"

	"github.com/telecomnet/telecom-social/internal/model"
)

// DefaultUserID is the identity seeded for local development.
const DefaultUserID = "local_user"

// UserCreator is the slice of the user service the bootstrap needs.
type UserCreator interface {
	Exists(ctx context.Context, userID string) (bool, error)
	CreateUser(ctx context.Context, u *model.User) (*model.User, error)
}

// EnsureDefaultUser creates the local developer identity (and its profile)
// when it does not exist yet. No-op otherwise.
func EnsureDefaultUser(ctx context.Context, users UserCreator) error {
	ok, err := users.Exists(ctx, DefaultUserID)
	if err != nil || ok {
		return err
	}
	_, err = users.CreateUser(ctx, &model.User{
		UserID:    DefaultUserID,
		Username:  "local_user",
		Email:     "dev@localhost.dev",
		FirstName: "Local",
		LastName:  "Developer",
	})
	return err
}
