package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/yuriataaide/dailydiet/internal"
	"github.com/yuriataaide/dailydiet/internal/storage"
)

func TestValidateRegisterRequest(t *testing.T) {
	assert.NoError(t, ValidateRegisterRequest(&RegisterRequest{Name: "Clarice", Email: "clarice@email.com"}))
	assert.Error(t, ValidateRegisterRequest(&RegisterRequest{Name: "Clarice"}))
	assert.Error(t, ValidateRegisterRequest(&RegisterRequest{Email: "clarice@email.com"}))
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	logger := internal.NewZapLogger(zap.NewNop().Sugar())
	repo, err := storage.NewMemoryStorage("", "", logger)
	assert.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	req := &RegisterRequest{Name: "Clarice", Email: "clarice@email.com"}

	first, err := RegisterUser(ctx, repo, "session-1", req)
	assert.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	// Second registration with the same email fails, even from another session.
	_, err = RegisterUser(ctx, repo, "session-2", req)
	assert.ErrorIs(t, err, storage.ErrDuplicateEmail)

	// No second row was created.
	users, err := ListUsers(ctx, repo, "session-1")
	assert.NoError(t, err)
	assert.Len(t, users, 1)
	users, err = ListUsers(ctx, repo, "session-2")
	assert.NoError(t, err)
	assert.Len(t, users, 0)
}

func TestGetUser_Scoping(t *testing.T) {
	logger := internal.NewZapLogger(zap.NewNop().Sugar())
	repo, err := storage.NewMemoryStorage("", "", logger)
	assert.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	user, err := RegisterUser(ctx, repo, "session-1", &RegisterRequest{Name: "Clarice", Email: "clarice@email.com"})
	assert.NoError(t, err)

	got, err := GetUser(ctx, repo, "session-1", user.ID)
	assert.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	// Other sessions get an empty result, not an error.
	got, err = GetUser(ctx, repo, "session-2", user.ID)
	assert.NoError(t, err)
	assert.Nil(t, got)
}
