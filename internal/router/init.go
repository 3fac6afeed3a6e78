package router

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	app "github.com/oksasatya/todo-api/internal/application"
	"github.com/oksasatya/todo-api/internal/container"
	"github.com/oksasatya/todo-api/internal/domain/repository"
	pginfra "github.com/oksasatya/todo-api/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/todo-api/internal/interface/http"
	"github.com/oksasatya/todo-api/internal/interface/middleware"
	"github.com/oksasatya/todo-api/internal/router/modules"
)

type UserModuleDeps struct {
	Repo    repository.UserRepository
	Service *app.UserService
	User    *handlers.UserHandler
	Auth    *handlers.AuthHandler
}

type TaskModuleDeps struct {
	Repo    repository.TaskRepository
	Service *app.TaskService
	Handler *handlers.TaskHandler
}

func buildUserDeps() UserModuleDeps {
	repo := container.GetUserRepo()
	if repo == nil {
		repo = pginfra.NewUserRepository(container.GetPGPool())
	}
	cfg := container.GetConfig()

	service := app.NewUserService(repo, container.GetJWT(), container.GetLogger())
	service.UsernameMinLength = cfg.UsernameMinLength
	service.PasswordMinLength = cfg.PasswordMinLength
	service.BcryptCost = cfg.BcryptCost

	return UserModuleDeps{
		Repo:    repo,
		Service: service,
		User:    handlers.NewUserHandler(service, container.GetLogger()),
		Auth:    handlers.NewAuthHandler(service, container.GetLogger()),
	}
}

func buildTaskDeps() TaskModuleDeps {
	repo := container.GetTaskRepo()
	if repo == nil {
		repo = pginfra.NewTaskRepository(container.GetPGPool())
	}

	service := app.NewTaskService(repo, container.GetRedis(), container.GetConfig().RedisCacheTTL, container.GetLogger())
	// assign only when set, a typed nil would defeat the nil checks in the service
	if pub := container.GetRabbitPub(); pub != nil {
		service.Events = pub
	}
	if idx := container.GetTaskIndex(); idx != nil {
		service.Search = idx
	}

	return TaskModuleDeps{
		Repo:    repo,
		Service: service,
		Handler: handlers.NewTaskHandler(service, container.GetLogger()),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	jwt := container.GetJWT()
	userDeps := buildUserDeps()
	taskDeps := buildTaskDeps()

	r.Add(modules.NewUserModule(userDeps.User, jwt))
	r.Add(modules.NewAuthModule(userDeps.Auth))
	r.Add(modules.NewTaskModule(taskDeps.Handler, jwt))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}

// NewEngine builds the gin engine with global middleware and every module mounted.
func NewEngine() *gin.Engine {
	cfg := container.GetConfig()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins())))
	if cfg.Env == "development" || cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := NewRegistry(r, cfg.APIPrefix)
	InitModules(reg)
	reg.RegisterAll()
	return r
}

// corsConfig allows the listed origins; an empty list or "*" allows any origin
// without credentials.
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader, "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
