package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MaxFailedLogins is the number of consecutive failures that deactivates an account.
const MaxFailedLogins = 5

type User struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	Email               string     `json:"email" gorm:"uniqueIndex;not null"`
	Password            string     `json:"-" gorm:"not null"`
	Role                Role       `json:"role" gorm:"type:varchar(10);not null"`
	IsActive            bool       `json:"is_active" gorm:"not null"`
	FailedLoginAttempts int        `json:"failed_login_attempts" gorm:"not null;default:0"`
	LastFailedLoginAt   *time.Time `json:"last_failed_login_at,omitempty"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// NewUserInput carries what is needed to create a login.
type NewUserInput struct {
	Email    string
	Password string
	Role     Role
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser hashes the password and stores a new active user.
func CreateUser(ctx context.Context, tx *gorm.DB, input NewUserInput) (*User, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, invalid("email", "is required")
	}
	if input.Password == "" {
		return nil, invalid("password", "is required")
	}
	if !input.Role.Valid() {
		return nil, invalid("role", "must be one of admin, agency, hospital")
	}

	var count int64
	if err := tx.WithContext(ctx).Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("email %s: %w", email, ErrUniqueness)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Email:    email,
		Password: string(hashed),
		Role:     input.Role,
		IsActive: true,
	}
	if err := tx.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("email %s: %w", email, ErrUniqueness)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate checks the credentials and maintains the failed-login counter.
// A wrong password increments the counter; reaching MaxFailedLogins deactivates the account.
func Authenticate(ctx context.Context, tx *gorm.DB, email, password string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user User
	err := tx.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	now := Now()
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		if err := recordFailedLogin(ctx, tx, user.ID, now); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	err = tx.WithContext(ctx).Model(&User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"failed_login_attempts": 0,
		"last_login_at":         now,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("reset login counter: %w", err)
	}
	user.FailedLoginAttempts = 0
	user.LastLoginAt = &now
	return &user, nil
}

func recordFailedLogin(ctx context.Context, tx *gorm.DB, userID uint, now time.Time) error {
	return tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&User{}).Where("id = ?", userID).Updates(map[string]any{
			"failed_login_attempts": gorm.Expr("failed_login_attempts + 1"),
			"last_failed_login_at":  now,
		}).Error
		if err != nil {
			return fmt.Errorf("increment login counter: %w", err)
		}

		err = tx.Model(&User{}).
			Where("id = ? AND failed_login_attempts >= ?", userID, MaxFailedLogins).
			Update("is_active", false).Error
		if err != nil {
			return fmt.Errorf("deactivate user: %w", err)
		}
		return nil
	})
}

// ReactivateUser re-enables a locked account and clears its counter.
func ReactivateUser(ctx context.Context, tx *gorm.DB, _ AdminPrincipal, userID uint) (*User, error) {
	res := tx.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Updates(map[string]any{
		"is_active":             true,
		"failed_login_attempts": 0,
	})
	if res.Error != nil {
		return nil, fmt.Errorf("reactivate user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	var user User
	if err := tx.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

// ChangeRole moves a user to another role. The role is frozen once a hospital or
// agency record is attached to the user.
func ChangeRole(ctx context.Context, tx *gorm.DB, _ AdminPrincipal, userID uint, role Role) (*User, error) {
	if !role.Valid() {
		return nil, invalid("role", "must be one of admin, agency, hospital")
	}

	var user User
	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			return notFound(err, "user")
		}
		if user.Role == role {
			return nil
		}

		attached, err := hasRoleEntity(tx, userID)
		if err != nil {
			return err
		}
		if attached {
			return fmt.Errorf("user %d already has a %s record attached: %w", userID, user.Role, ErrInvalidState)
		}

		if err := tx.Model(&user).Update("role", role).Error; err != nil {
			return fmt.Errorf("update role: %w", err)
		}
		user.Role = role
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func hasRoleEntity(tx *gorm.DB, userID uint) (bool, error) {
	var hospitals, agencies int64
	if err := tx.Model(&Hospital{}).Where("user_id = ?", userID).Count(&hospitals).Error; err != nil {
		return false, fmt.Errorf("count hospitals: %w", err)
	}
	if err := tx.Model(&Agency{}).Where("user_id = ?", userID).Count(&agencies).Error; err != nil {
		return false, fmt.Errorf("count agencies: %w", err)
	}
	return hospitals+agencies > 0, nil
}
