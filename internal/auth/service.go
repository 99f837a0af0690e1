package auth

import (
	"errors"

	"verdant-backend/internal/domain"
	"verdant-backend/internal/pkg/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginInput for login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput for registration. Account becomes the user's address on every
// ledger.
type RegisterInput struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Account  string `json:"account"`
}

// SessionUserShape is the object stored in session and returned by /me.
type SessionUserShape struct {
	UserID   string `json:"user_id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Account  string `json:"account"`
}

// UserFinder abstracts user lookup by email+password (GORM in production,
// test doubles elsewhere).
type UserFinder interface {
	FindByEmailAndPassword(email, password string) (*domain.User, error)
}

// GormUserFinder implements UserFinder using GORM and bcrypt.
type GormUserFinder struct{ DB *gorm.DB }

func (g *GormUserFinder) FindByEmailAndPassword(email, password string) (*domain.User, error) {
	return LoginUser(g.DB, LoginInput{Email: email, Password: password})
}

// LoginUser finds user by email and verifies password.
func LoginUser(db *gorm.DB, input LoginInput) (*domain.User, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	var u domain.User
	if err := db.Where("email = ?", input.Email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidEmail
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return &u, nil
}

// RegisterUser creates a user with a bcrypt password hash and a unique
// ledger account.
func RegisterUser(db *gorm.DB, input RegisterInput) (*domain.User, error) {
	if !validation.IsValidEmail(input.Email) {
		return nil, ErrInvalidEmail
	}
	if !validation.IsValidPassword(input.Password) {
		return nil, ErrWeakPassword
	}
	if !validation.IsValidAccount(input.Account) {
		return nil, ErrInvalidAccount
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Fullname:     input.Fullname,
		Email:        input.Email,
		PasswordHash: string(hash),
		Account:      input.Account,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		if err := tx.Model(&domain.User{}).Where("account = ?", input.Account).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAccountTaken
		}
		return tx.Create(user).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyUser validates the session user and returns the shape for /me.
func VerifyUser(sessionUser interface{}) (*SessionUserShape, error) {
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	userID, _ := m["user_id"].(string)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return &SessionUserShape{
		UserID:   userID,
		Fullname: str(m["fullname"]),
		Email:    str(m["email"]),
		Account:  str(m["account"]),
	}, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
