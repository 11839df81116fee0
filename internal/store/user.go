package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no user matches the given id or email.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when a write would violate the email or phone
	// unique index. The database constraint is the single source of truth;
	// there is no check-then-write lookup that could race.
	ErrDuplicate = errors.New("email or phone already exists")
)

// Roles stored in User.Role.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is the persistent account record. Password holds the bcrypt hash and
// is never serialized.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Phone     *string   `json:"phone" gorm:"uniqueIndex;size:32"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Password  string    `json:"-" gorm:"size:255;not null"`
	Role      string    `json:"role" gorm:"size:16;not null;default:USER"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// publicColumns is the projection used for listings: everything except the
// password hash, excluded at the query level.
var publicColumns = []string{"id", "email", "name", "phone", "role", "created_at", "updated_at"}

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *User) error {
	if err := r.db.Create(user).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *UserRepository) GetByID(id string) (*User, error) {
	var user User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*User, error) {
	var user User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// List returns all users without their password hashes.
func (r *UserRepository) List() ([]User, error) {
	var users []User
	if err := r.db.Select(publicColumns).Order("created_at").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Update writes the full record back. Saving a user whose email or phone is
// unchanged cannot conflict with its own row, so exclusion-by-self holds
// without any extra lookup.
func (r *UserRepository) Update(user *User) error {
	if err := r.db.Save(user).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *UserRepository) Delete(id string) error {
	res := r.db.Where("id = ?", id).Delete(&User{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
