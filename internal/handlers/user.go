package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/gamehub/backend/internal/models"
	"github.com/anonto42/gamehub/backend/internal/query"
	"github.com/anonto42/gamehub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)    // Get own profile
	g.PUT("/profile", h.UpdateProfile) // Update own profile
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetUser) // Get other user's public profile
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	user, err := h.userRepository.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
	}
	return respondOK(c, http.StatusOK, user.ToCompact())
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), currentUserID)
	if err != nil {
		return respondError(c, err)
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
	}
	return respondOK(c, http.StatusOK, user)
}

// UpdateProfile updates the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, currentUserID)
	if err != nil {
		return respondError(c, err)
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}

	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
		}
		return respondError(c, err)
	}

	return respondOK(c, http.StatusOK, user)
}

// SearchUsers searches for users by username or email
func (h *UserHandler) SearchUsers(c echo.Context) error {
	p := queryParams(c)
	if !p.HasSearch() {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query 'q' is required")
	}

	users, total, err := h.userRepository.SearchUsers(c.Request().Context(), p)
	if err != nil {
		return respondError(c, err)
	}

	compact := make([]models.UserCompact, len(users))
	for i := range users {
		compact[i] = users[i].ToCompact()
	}
	return respondPage(c, query.NewPage(compact, p, total))
}
