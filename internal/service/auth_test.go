package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apocighol/cevicheria-api/internal/domain"
)

type fakeAuthUserRepo struct {
	users  map[string]domain.User
	nextID uint
}

func newFakeAuthUserRepo() *fakeAuthUserRepo {
	return &fakeAuthUserRepo{users: make(map[string]domain.User), nextID: 1}
}

func (r *fakeAuthUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	key := strings.ToLower(user.Email)
	if _, ok := r.users[key]; ok {
		return domain.User{}, ErrUserEmailExists
	}
	user.ID = r.nextID
	r.nextID++
	r.users[key] = user
	return user, nil
}

func (r *fakeAuthUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	user, ok := r.users[strings.ToLower(email)]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return user, nil
}

func TestAuthService_SignupAndLogin(t *testing.T) {
	svc := NewAuthService(newFakeAuthUserRepo())

	created, err := svc.Signup(context.Background(), domain.User{
		Email:    "maria@cevicheria.pe",
		Password: "pescado123",
		Name:     "Maria",
		Role:     "mesero",
	})

	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	// The stored password is a hash, never the plaintext.
	assert.NotEqual(t, "pescado123", created.Password)

	t.Run("login with the right password", func(t *testing.T) {
		user, err := svc.Login(context.Background(), "maria@cevicheria.pe", "pescado123")

		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
	})

	t.Run("login with the wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "maria@cevicheria.pe", "cebiche123")

		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("login with an unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "nadie@cevicheria.pe", "pescado123")

		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("duplicate signup", func(t *testing.T) {
		_, err := svc.Signup(context.Background(), domain.User{
			Email:    "maria@cevicheria.pe",
			Password: "otra",
			Name:     "Otra Maria",
			Role:     "cocina",
		})

		assert.ErrorIs(t, err, ErrUserEmailExists)
	})
}
