package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/kidlingo/pkg/security"
)

// ClaimsKey gin.Context 中存储 Claims 的 key
const ClaimsKey = "jwt_claims"

// Auth Bearer 令牌认证，失败返回 401 {"detail": "Could not validate credentials"}
func Auth(jwt *security.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			abortUnauthorized(c, "Not authenticated")
			return
		}

		claims, err := jwt.Validate(token)
		if err != nil {
			abortUnauthorized(c, "Could not validate credentials")
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}

// Subject 当前请求的令牌主体 (用户 ID)
func Subject(c *gin.Context) string {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*security.Claims); ok {
			return claims.Subject
		}
	}
	return ""
}
