package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"papertrade/internal/delivery/http/dto"
	"papertrade/internal/domain"
	"papertrade/internal/middleware"
	"papertrade/internal/service"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles user registration
// POST /api/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	if req.Username == "" || req.Password == "" {
		return BadRequestResponse(c, "Username and password are required")
	}

	if len(req.Password) < 6 {
		return BadRequestResponse(c, "Password must be at least 6 characters")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.authService.Register(ctx, req.Username, req.Password)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return CreatedResponse(c, userOutput(user))
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	if req.Username == "" || req.Password == "" {
		return BadRequestResponse(c, "Username and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.authService.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	token, err := middleware.GenerateJWT(user.ID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to generate token", err)
	}

	// Set HTTP-only cookie
	cookie := &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   86400, // 24 hours
	}
	c.SetCookie(cookie)

	return SuccessResponse(c, dto.LoginResponse{
		Token: token,
		User:  userOutput(user),
	})
}

// Logout handles user logout
// POST /api/auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.authService.RecordLogout(ctx, userID); err != nil {
		return DomainErrorResponse(c, err)
	}

	// Clear the cookie
	cookie := &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1, // Delete cookie
	}
	c.SetCookie(cookie)

	return SuccessMessageResponse(c, "Logged out", nil)
}

func userOutput(user *domain.User) *dto.UserOutput {
	return &dto.UserOutput{
		ID:       user.ID.String(),
		Username: user.Username,
		Cash:     user.Cash.StringFixed(2),
	}
}
