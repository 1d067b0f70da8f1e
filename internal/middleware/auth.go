package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/klass-lk/blogapi"
	"github.com/klass-lk/blogapi/internal/permission"
)

type AccessTokenParser interface {
	ParseAccessToken(token string) (*blogapi.Claims, error)
}

// Authentication resolves an optional bearer token into the request identity.
// Requests without a token continue anonymously; a bad token is rejected.
func Authentication(tokens AccessTokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			blogapi.SendError(c, blogapi.InvalidToken())
			return
		}

		claims, err := tokens.ParseAccessToken(strings.TrimSpace(token))
		if err != nil {
			blogapi.SendError(c, blogapi.InvalidToken())
			return
		}

		c.Set(blogapi.ContextUserID, claims.Subject)
		c.Set(blogapi.ContextUsername, claims.Username)
		c.Set(blogapi.ContextRole, claims.Role)
		c.Next()
	}
}

// Require gates a route on a request level rule.
func Require(rule permission.Rule) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := permission.Check(rule, c.Request.Method, blogapi.IdentityOf(c)); err != nil {
			blogapi.SendError(c, err)
			return
		}
		c.Next()
	}
}
