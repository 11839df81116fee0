package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/snow6692/chat/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// UserService owns account business rules: password hashing, default role
// assignment, and the mapping from storage errors to domain errors. Conflict
// detection is delegated entirely to the store's unique indexes.
type UserService struct {
	repo *store.UserRepository
	jwt  *JWTService
	log  *zap.SugaredLogger
}

func NewUserService(repo *store.UserRepository, jwt *JWTService, log *zap.SugaredLogger) *UserService {
	return &UserService{repo: repo, jwt: jwt, log: log}
}

// CreateUserInput carries the already-validated create payload.
type CreateUserInput struct {
	Email    string
	Password string
	Name     string
	Phone    *string
}

// UpdateUserInput carries a partial update; nil fields are left untouched.
// ClearPhone removes the phone number; it takes precedence over Phone.
type UpdateUserInput struct {
	Email      *string
	Password   *string
	Name       *string
	Phone      *string
	ClearPhone bool
	Role       *string
}

func (s *UserService) Create(in CreateUserInput) (*store.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &store.User{
		ID:       uuid.NewString(),
		Email:    in.Email,
		Phone:    in.Phone,
		Name:     in.Name,
		Password: string(hash),
		Role:     store.RoleUser,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, err
	}
	s.log.Infow("user created", "id", user.ID, "email", user.Email)
	return user, nil
}

func (s *UserService) Get(id string) (*store.User, error) {
	return s.repo.GetByID(id)
}

func (s *UserService) List() ([]store.User, error) {
	return s.repo.List()
}

func (s *UserService) Update(id string, in UpdateUserInput) (*store.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	switch {
	case in.ClearPhone:
		user.Phone = nil
	case in.Phone != nil:
		user.Phone = in.Phone
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hash)
	}

	if err := s.repo.Update(user); err != nil {
		return nil, err
	}
	s.log.Infow("user updated", "id", user.ID)
	return user, nil
}

func (s *UserService) Delete(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.log.Infow("user deleted", "id", id)
	return nil
}

// Login verifies the credentials and issues the token consumed by the /me
// endpoint. Unknown email and wrong password are indistinguishable.
func (s *UserService) Login(email, password string) (string, error) {
	user, err := s.repo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return s.jwt.Generate(user.ID)
}
