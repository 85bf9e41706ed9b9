package middleware

import (
	"net/http"

	"github.com/anonto42/gamehub/backend/internal/repositories"
	"github.com/anonto42/gamehub/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// FirebaseAuthMiddleware verifies Firebase ID tokens and resolves them to a
// local user. Users must have signed in once via /auth/firebase-login.
func FirebaseAuthMiddleware(verifier firebase.TokenVerifier, users repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idToken, err := bearerToken(c)
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			token, err := verifier.VerifyIDToken(ctx, idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
			}

			user, err := users.GetUserByFirebaseUID(ctx, token.UID)
			if err != nil {
				logrus.WithError(err).WithField("firebase_uid", token.UID).Error("resolving firebase user")
				return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
			}
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "User is not registered")
			}

			c.Set("firebaseUID", token.UID)
			c.Set("firebaseToken", token)
			c.Set(UserIDKey, user.ID)

			return next(c)
		}
	}
}
