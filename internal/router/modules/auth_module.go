package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/todo-api/internal/interface/http"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/login", publicLimiter(), m.Handler.Login)
}
