package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yuriataaide/dailydiet/internal"
	"github.com/yuriataaide/dailydiet/internal/storage"
)

var validate = validator.New()

type RegisterRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
}

func ValidateRegisterRequest(req *RegisterRequest) error {
	return validate.Struct(req)
}

// RegisterUser binds a new user to the caller's session token.
// storage.ErrDuplicateEmail is returned unwrapped so handlers can map it.
func RegisterUser(ctx context.Context, userRepo storage.UserRepository, sessionID string, req *RegisterRequest) (*internal.User, error) {
	user := &internal.User{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		SessionID: sessionID,
	}
	if err := userRepo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func ListUsers(ctx context.Context, userRepo storage.UserRepository, sessionID string) ([]internal.User, error) {
	return userRepo.ListUsers(ctx, sessionID)
}

// GetUser returns (nil, nil) when no user matches; absence is not an error.
func GetUser(ctx context.Context, userRepo storage.UserRepository, sessionID, id string) (*internal.User, error) {
	return userRepo.GetUser(ctx, sessionID, id)
}
