// SPDX-License-Identifier: GPL-3.0-only

package middlewares

import (
	"errors"
	"net/http"
	"neurostudy-server/commons"
	"neurostudy-server/crypto"
	"neurostudy-server/db"
	"neurostudy-server/models"
	"neurostudy-server/notifications"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type AuthMethod int

const (
	AuthMethodIdentityToken AuthMethod = iota
	AuthMethodExtensionToken
)

// ExtensionTokenIDLength is the public prefix length of an extension
// token ("ext_" plus 16 hex bytes); the prefix is stored in clear and
// used for lookup, the rest is verified against the argon2id hash.
const ExtensionTokenIDLength = 36

// VerifyAuthMiddleware authenticates the request with one of the
// allowed methods and stores the external user id under "user_id".
// When ENV is not production, an X-Dev-User header is honored as an
// unauthenticated shortcut.
func VerifyAuthMiddleware(authMethods ...AuthMethod) func(echo.HandlerFunc) echo.HandlerFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			logger := c.Logger()

			if commons.GetEnv("ENV", "development") != "production" {
				if devUser := c.Request().Header.Get("X-Dev-User"); devUser != "" {
					c.Set("user_id", devUser)
					return next(c)
				}
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				logger.Error("Authorization header missing or invalid.")
				return &echo.HTTPError{
					Code:    http.StatusUnauthorized,
					Message: "Bearer token is required",
				}
			}

			if len(authMethods) == 0 {
				authMethods = []AuthMethod{AuthMethodIdentityToken}
			}

			isMethodAllowed := func(method AuthMethod) bool {
				return slices.Contains(authMethods, method)
			}

			bearer, _ := strings.CutPrefix(authHeader, "Bearer ")

			if isMethodAllowed(AuthMethodIdentityToken) && !strings.HasPrefix(bearer, "ext_") {
				token, err := jwt.Parse(bearer, func(t *jwt.Token) (any, error) {
					if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
						return nil, errors.New("unexpected signing method")
					}
					return []byte(commons.GetEnv("JWT_SECRET", "default_very_secret_key")), nil
				})

				if err == nil && token.Valid {
					if claims, ok := token.Claims.(jwt.MapClaims); ok {
						if sub, _ := claims["sub"].(string); sub != "" {
							email, _ := claims["email"].(string)
							ensureUserRecord(c, sub, email)
							c.Set("user_id", sub)
							c.Set("auth_method", AuthMethodIdentityToken)
							return next(c)
						}
					}
				}
			}

			if isMethodAllowed(AuthMethodExtensionToken) && strings.HasPrefix(bearer, "ext_") && db.Conn != nil {
				if len(bearer) >= ExtensionTokenIDLength {
					tokenID := bearer[:ExtensionTokenIDLength]

					extToken := models.ExtensionToken{}
					err := db.Conn.Where("token_id = ?", tokenID).First(&extToken).Error
					if err == nil {
						if extToken.ExpiresAt != nil && extToken.ExpiresAt.Before(time.Now()) {
							logger.Error("Extension token expired.")
						} else {
							cryptoInstance := crypto.NewCrypto()
							if err := cryptoInstance.VerifyToken(bearer, extToken.HashedKey); err == nil {
								now := time.Now()
								extToken.LastUsedAt = &now
								if err := db.Conn.Save(&extToken).Error; err != nil {
									logger.Error("Failed to update extension token LastUsedAt: ", err)
								}

								c.Set("user_id", extToken.UserID)
								c.Set("auth_method", AuthMethodExtensionToken)
								return next(c)
							}
						}
					}
				}
			}

			logger.Error("Authentication failed.")
			return &echo.HTTPError{
				Code:    http.StatusUnauthorized,
				Message: "Invalid or expired authentication token",
			}
		}
	}
}

// ensureUserRecord lazily creates the local user row the first time an
// identity-token subject is seen. Best effort; quota checks degrade to
// the free plan when the row is missing.
func ensureUserRecord(c echo.Context, externalID, email string) {
	if db.Conn == nil {
		return
	}
	var user models.User
	err := db.Conn.Where("external_id = ?", externalID).First(&user).Error
	if err == nil {
		return
	}
	user = models.User{ExternalID: externalID}
	if email != "" {
		user.Email = &email
	}
	if err := db.Conn.Create(&user).Error; err != nil {
		c.Logger().Error("Failed to create user record: ", err)
		return
	}
	if email != "" {
		go func() {
			if err := notifications.SendWelcome(email, nil); err != nil {
				commons.Logger.Errorf("Failed to send welcome email: %v", err)
			}
		}()
	}
}

// GetAuthenticatedUserID returns the external user id set by
// VerifyAuthMiddleware.
func GetAuthenticatedUserID(c echo.Context) (string, error) {
	if userID, ok := c.Get("user_id").(string); ok && userID != "" {
		return userID, nil
	}
	return "", errors.New("no authenticated user found")
}

// GetAuthenticatedUser loads the full user row for the request, when a
// database is configured.
func GetAuthenticatedUser(c echo.Context) (*models.User, error) {
	userID, err := GetAuthenticatedUserID(c)
	if err != nil {
		return nil, err
	}
	if db.Conn == nil {
		return nil, errors.New("no database configured")
	}
	var user models.User
	if err := db.Conn.Where("external_id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
