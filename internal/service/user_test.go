package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/snow6692/chat/internal/store"
)

func newTestService(t *testing.T) (*UserService, *JWTService) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "chat.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	db := &store.DB{DB: gdb}
	require.NoError(t, db.Migrate())

	jwt := NewJWTService("test_secret", 1)
	return NewUserService(store.NewUserRepository(db), jwt, zap.NewNop().Sugar()), jwt
}

func TestCreateHashesPasswordAndDefaultsRole(t *testing.T) {
	users, _ := newTestService(t)

	user, err := users.Create(CreateUserInput{
		Email:    "a@x.com",
		Password: "password1",
		Name:     "A",
	})
	require.NoError(t, err)
	require.Equal(t, store.RoleUser, user.Role)
	require.NotEqual(t, "password1", user.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password1")))
}

func TestLoginIssuesUsableToken(t *testing.T) {
	users, jwt := newTestService(t)

	created, err := users.Create(CreateUserInput{Email: "a@x.com", Password: "password1", Name: "A"})
	require.NoError(t, err)

	token, err := users.Login("a@x.com", "password1")
	require.NoError(t, err)

	userID, err := jwt.Validate(token)
	require.NoError(t, err)
	require.Equal(t, created.ID, userID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	users, _ := newTestService(t)

	_, err := users.Create(CreateUserInput{Email: "a@x.com", Password: "password1", Name: "A"})
	require.NoError(t, err)

	_, err = users.Login("a@x.com", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = users.Login("nobody@x.com", "password1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateRehashesOnlyWhenPasswordSupplied(t *testing.T) {
	users, _ := newTestService(t)

	created, err := users.Create(CreateUserInput{Email: "a@x.com", Password: "password1", Name: "A"})
	require.NoError(t, err)
	originalHash := created.Password

	name := "Renamed"
	updated, err := users.Update(created.ID, UpdateUserInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, originalHash, updated.Password)
	require.Equal(t, "Renamed", updated.Name)

	newPassword := "password2"
	updated, err = users.Update(created.ID, UpdateUserInput{Password: &newPassword})
	require.NoError(t, err)
	require.NotEqual(t, originalHash, updated.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("password2")))
}

func TestUpdateClearPhone(t *testing.T) {
	users, _ := newTestService(t)

	phone := "+15550001"
	created, err := users.Create(CreateUserInput{Email: "a@x.com", Password: "password1", Name: "A", Phone: &phone})
	require.NoError(t, err)
	require.NotNil(t, created.Phone)

	updated, err := users.Update(created.ID, UpdateUserInput{ClearPhone: true})
	require.NoError(t, err)
	require.Nil(t, updated.Phone)

	fetched, err := users.Get(created.ID)
	require.NoError(t, err)
	require.Nil(t, fetched.Phone)
}

func TestUpdateMissingUser(t *testing.T) {
	users, _ := newTestService(t)

	name := "X"
	_, err := users.Update("no-such-id", UpdateUserInput{Name: &name})
	require.ErrorIs(t, err, store.ErrNotFound)
}
