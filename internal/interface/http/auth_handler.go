package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/todo-api/internal/application"
	"github.com/oksasatya/todo-api/pkg/response"
)

type AuthHandler struct {
	Svc    *app.UserService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *app.UserService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login handles POST /auth/login and returns a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, tokenResponse{Token: res.Token}, "login successful",
		map[string]any{"expires_at": res.ExpiresAt})
}
