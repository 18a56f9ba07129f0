package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/secondbrain-io/secondbrain/internal/pkg/httputils"
	"github.com/secondbrain-io/secondbrain/pkg/utils/errors"
)

// OwnerKey is the gin context key carrying the authenticated owner ID.
const OwnerKey = "owner_id"

// Auth verifies the bearer token and stores the subject as the owner ID.
// Token issuance lives in the identity service; this middleware only
// verifies HS256 signatures against the shared key.
func Auth(signingKey string) gin.HandlerFunc {
	key := []byte(signingKey)

	return func(c *gin.Context) {
		tokenString := extractBearer(c.GetHeader("Authorization"))
		if tokenString == "" {
			httputils.WriteResponse(c, errors.ErrUnauthorized.WithMessage("missing bearer token"), nil)
			c.Abort()
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, errors.ErrTokenInvalid.WithMessage("unexpected signing method")
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			httputils.WriteResponse(c, errors.ErrTokenInvalid.WithCause(err), nil)
			c.Abort()
			return
		}
		if claims.Subject == "" {
			httputils.WriteResponse(c, errors.ErrTokenInvalid.WithMessage("token has no subject"), nil)
			c.Abort()
			return
		}

		c.Set(OwnerKey, claims.Subject)
		c.Next()
	}
}

// OwnerID returns the authenticated owner ID from the gin context.
func OwnerID(c *gin.Context) string {
	return c.GetString(OwnerKey)
}

func extractBearer(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
