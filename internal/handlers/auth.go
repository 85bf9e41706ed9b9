package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/gamehub/backend/internal/middleware"
	"github.com/anonto42/gamehub/backend/internal/models"
	"github.com/anonto42/gamehub/backend/internal/repositories"
	"github.com/anonto42/gamehub/backend/internal/services"
	"github.com/anonto42/gamehub/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	accounts       *services.AccountService
	firebaseAuth   firebase.TokenVerifier
	jwtSecret      string
	jwtTTL         time.Duration
}

// NewAuthHandler creates a new AuthHandler. firebaseAuth may be nil, which
// disables /firebase-login.
func NewAuthHandler(userRepo repositories.UserRepository, accounts *services.AccountService, firebaseAuth firebase.TokenVerifier, jwtSecret string, jwtTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		accounts:       accounts,
		firebaseAuth:   firebaseAuth,
		jwtSecret:      jwtSecret,
		jwtTTL:         jwtTTL,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.CreateLocalUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	existing, err := h.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return respondError(c, err)
	}
	if existing != nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
	}
	existing, err = h.userRepository.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return respondError(c, err)
	}
	if existing != nil {
		return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	if err := h.accounts.Register(ctx, user); err != nil {
		return respondError(c, err)
	}

	token, err := middleware.IssueToken(h.jwtSecret, h.jwtTTL, user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token after signup")
	}

	return respondOK(c, http.StatusCreated, echo.Map{"token": token, "user": user})
}

// SignIn handles local user authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		return respondError(c, err)
	}
	if user == nil || user.Password == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := middleware.IssueToken(h.jwtSecret, h.jwtTTL, user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return respondOK(c, http.StatusOK, echo.Map{"token": token})
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token, links or creates the local
// user, and issues a local JWT
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebaseAuth == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Firebase login is not configured")
	}

	var req FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	firebaseUID := token.UID
	email, _ := token.Claims["email"].(string)
	if email == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Firebase account has no email")
	}
	name, _ := token.Claims["name"].(string)

	user, err := h.userRepository.GetUserByFirebaseUID(ctx, firebaseUID)
	if err != nil {
		return respondError(c, err)
	}

	if user == nil {
		user, err = h.userRepository.GetUserByEmail(ctx, email)
		if err != nil {
			return respondError(c, err)
		}
		if user != nil {
			// Existing local account, link it to Firebase
			user.FirebaseUID = &firebaseUID
			if err := h.userRepository.UpdateUser(ctx, user); err != nil {
				return respondError(c, err)
			}
		} else {
			user = &models.User{
				Username:    usernameFromProfile(name, email, firebaseUID),
				Email:       email,
				FirebaseUID: &firebaseUID,
			}
			if err := h.accounts.Register(ctx, user); err != nil {
				return respondError(c, err)
			}
		}
	}

	localJWT, err := middleware.IssueToken(h.jwtSecret, h.jwtTTL, user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate local JWT")
	}

	return respondOK(c, http.StatusOK, echo.Map{"token": localJWT})
}

// usernameFromProfile derives an alphanumeric username from the Firebase
// display name (or email local part), suffixed with part of the UID.
func usernameFromProfile(name, email, uid string) string {
	base := name
	if base == "" {
		base = strings.SplitN(email, "@", 2)[0]
	}

	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	username := b.String()
	if len(username) > 20 {
		username = username[:20]
	}
	if username == "" {
		username = "player"
	}

	suffix := strings.ToLower(uid)
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return username + suffix
}
