package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"todo-bills/internal/auth"
	"todo-bills/internal/models"
	"todo-bills/internal/repository"
	"todo-bills/internal/validation"
	"todo-bills/pkg/logger"
)

// Register creates an account and signs it in.
func (h *Handlers) Register(c *gin.Context) {
	ctx := c.Request.Context()
	var in validation.Credentials
	if !bindJSON(c, &in) {
		return
	}
	if ve, ok := validation.AsErrors(h.Validator.Credentials(in)); ok {
		badRequest(c, ve)
		return
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		internalError(c, "Failed to register", err)
		return
	}
	user, err := h.Users.Create(ctx, in.Username, hash)
	if errors.Is(err, repository.ErrConflict) {
		conflict(c, "Username already taken")
		return
	}
	if err != nil {
		internalError(c, "Failed to register", err)
		return
	}
	logger.Info(ctx, "User registered", "user_id", user.ID)
	h.startSession(c, http.StatusCreated, user)
}

// Login checks credentials and issues a session.
func (h *Handlers) Login(c *gin.Context) {
	ctx := c.Request.Context()
	var in validation.Credentials
	if !bindJSON(c, &in) {
		return
	}
	var missing validation.Errors
	if in.Username == "" {
		missing = append(missing, validation.FieldError{Field: "username", Message: "Required"})
	}
	if in.Password == "" {
		missing = append(missing, validation.FieldError{Field: "password", Message: "Required"})
	}
	if len(missing) > 0 {
		badRequest(c, missing)
		return
	}
	user, err := h.Users.ByUsername(ctx, in.Username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		internalError(c, "Failed to log in", err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, in.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	h.startSession(c, http.StatusOK, user)
}

// Logout clears the session cookie. Bearer tokens simply expire.
func (h *Handlers) Logout(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handlers) startSession(c *gin.Context, status int, user *models.User) {
	token, exp, err := h.Tokens.Issue(user.ID)
	if err != nil {
		internalError(c, "Failed to start session", err)
		return
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	c.JSON(status, gin.H{"token": token, "user": user})
}
