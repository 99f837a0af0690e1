package auth

import (
	"context"
	"errors"

	authsvc "verdant-backend/internal/auth"
	"verdant-backend/internal/middleware"
	"verdant-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const userSessionsPrefix = "user_sessions:"

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	DB         *gorm.DB
	UserFinder authsvc.UserFinder
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

// Login POST /api/v1/auth/login: authenticate, create session, set cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.UserFinder == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req authsvc.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Email and password are required", fiber.StatusBadRequest, nil)
	}
	if req.Email == "" || req.Password == "" {
		return response.Error(c, "Email and password are required", fiber.StatusBadRequest, nil)
	}

	user, err := h.UserFinder.FindByEmailAndPassword(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrEmailPasswordRequired):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, authsvc.ErrInvalidEmail), errors.Is(err, authsvc.ErrIncorrectPassword):
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:   user.UserID.String(),
		Fullname: user.Fullname,
		Email:    user.Email,
		Account:  user.Account,
	})

	// Track session ids per user so an account wipe can drop them all.
	if h.Rdb != nil {
		_ = h.Rdb.SAdd(context.Background(), userSessionsPrefix+user.UserID.String(), sessionID).Err()
	}

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = sessionID
	c.Cookie(&cookie)

	return response.Success(c, "Login successful", fiber.Map{
		"user": fiber.Map{
			"user_id":  user.UserID.String(),
			"fullname": user.Fullname,
			"email":    user.Email,
			"account":  user.Account,
		},
	})
}

// Register POST /api/v1/auth/register: create user with ledger account.
func (h *Handlers) Register(c *fiber.Ctx) error {
	if h.DB == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req authsvc.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	user, err := authsvc.RegisterUser(h.DB, req)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidEmail),
			errors.Is(err, authsvc.ErrWeakPassword),
			errors.Is(err, authsvc.ErrInvalidAccount):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, authsvc.ErrEmailTaken), errors.Is(err, authsvc.ErrAccountTaken):
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.SuccessCreated(c, "User registered", fiber.Map{"user": user})
}

// Me GET /api/v1/auth/me: return current session user.
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := authsvc.VerifyUser(middleware.GetUser(c))
	if err != nil {
		return response.Error(c, "Not authenticated", fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user})
}

// Logout DELETE /api/v1/auth/logout: destroy session, clear cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	if sid := middleware.GetSessionID(c); sid != "" && h.Rdb != nil {
		_ = h.Rdb.Del(context.Background(), middleware.SessionRedisPrefix+sid).Err()
	}
	middleware.DestroySession(c)
	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)
	return response.Success(c, "Logged out", nil)
}
