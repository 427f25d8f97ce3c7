package storage

import (
	"context"
	"errors"

	"github.com/yuriataaide/dailydiet/internal"
)

var (
	// ErrNotFound is returned when a lookup or owner-scoped mutation matches no row.
	ErrNotFound = errors.New("storage: not found")
	// ErrDuplicateEmail is returned when a user insert violates email uniqueness.
	ErrDuplicateEmail = errors.New("storage: email already registered")
)

type UserRepository interface {
	SaveUser(ctx context.Context, user *internal.User) error
	ListUsers(ctx context.Context, sessionID string) ([]internal.User, error)
	// GetUser returns (nil, nil) when no user matches the session/id pair.
	GetUser(ctx context.Context, sessionID, id string) (*internal.User, error)
}

type MealRepository interface {
	SaveMeal(ctx context.Context, meal *internal.Meal) error
	// ListMeals returns the owner's meals ordered by date descending,
	// ties broken by created_at descending then id ascending.
	ListMeals(ctx context.Context, ownerID string) ([]internal.Meal, error)
	GetMeal(ctx context.Context, ownerID, id string) (*internal.Meal, error)
	// UpdateMeal replaces name, description, is_on_diet and date of the
	// owner's meal. Returns ErrNotFound when no owned row matches.
	UpdateMeal(ctx context.Context, meal *internal.Meal) error
	DeleteMeal(ctx context.Context, ownerID, id string) error
}
