package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/todo-api/internal/interface/http"
	"github.com/oksasatya/todo-api/internal/interface/middleware"
	"github.com/oksasatya/todo-api/pkg/helpers"
)

// UserModule wires registration and the current-user lookup.
// Public: POST /user
// Protected: GET /user
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.POST("/user", publicLimiter(), m.Handler.Register)
	rg.GET("/user", middleware.Auth(m.JWT), userLimiter(), m.Handler.Me)
}
