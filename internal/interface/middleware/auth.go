package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/todo-api/pkg/helpers"
	"github.com/oksasatya/todo-api/pkg/response"
)

const CtxUserIDKey = "userID"

// Auth validates the bearer access token and injects the user id (token subject)
// into the Gin context under CtxUserIDKey.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, "missing access token", "")
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			msg := "invalid access token"
			if errors.Is(err, helpers.ErrExpiredToken) {
				msg = "access token expired"
			}
			unauthorized(c, msg, err.Error())
			return
		}
		c.Set(CtxUserIDKey, claims.UserID())
		c.Next()
	}
}

// UserID returns the authenticated user id set by Auth, or "".
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *gin.Context, msg, detail string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	response.Error[any](c, http.StatusUnauthorized, msg, response.ErrorBody{Code: "UNAUTHORIZED", Detail: detail})
	c.Abort()
}
