package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aether-industries/storefront-api/internal/utils"
)

const (
	// CartSessionHeader carries the client-generated cart session id.
	CartSessionHeader = "X-Cart-Session"

	// IdentityKey is the context key holding the caller's identity. Empty
	// string means anonymous; the cart layer treats every value, including
	// empty, as an identity.
	IdentityKey = "identity"
)

// IdentityMiddleware resolves the caller's identity from an optional bearer
// token. An absent or invalid token yields the anonymous identity rather than
// an error; storefront routes work logged-out.
type IdentityMiddleware struct{}

func NewIdentityMiddleware() *IdentityMiddleware {
	return &IdentityMiddleware{}
}

func (m *IdentityMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := ""

		authHeader := c.GetHeader("Authorization")
		if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
			if claims, err := utils.ValidateJWT(parts[1]); err == nil {
				identity = claims.Email
			}
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}
