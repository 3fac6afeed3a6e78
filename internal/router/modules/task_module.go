package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/todo-api/internal/interface/http"
	"github.com/oksasatya/todo-api/internal/interface/middleware"
	"github.com/oksasatya/todo-api/pkg/helpers"
)

// TaskModule wires task CRUD and search; every route requires a bearer token.
type TaskModule struct {
	Handler *handlers.TaskHandler
	JWT     *helpers.JWTManager
}

func NewTaskModule(h *handlers.TaskHandler, jwt *helpers.JWTManager) *TaskModule {
	return &TaskModule{Handler: h, JWT: jwt}
}

func (m *TaskModule) Register(rg *gin.RouterGroup) {
	tasks := rg.Group("/task")
	tasks.Use(middleware.Auth(m.JWT), userLimiter())
	{
		tasks.POST("", m.Handler.Create)
		tasks.GET("", m.Handler.List)
		tasks.GET("/:id", m.Handler.Get)
		tasks.POST("/:id", m.Handler.Update)
		tasks.DELETE("/:id", m.Handler.Delete)
	}

	rg.GET("/search/tasks", middleware.Auth(m.JWT), userLimiter(), m.Handler.Search)
}
