package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/todo-api/internal/application"
	"github.com/oksasatya/todo-api/internal/interface/middleware"
	"github.com/oksasatya/todo-api/pkg/response"
)

type TaskHandler struct {
	Svc    *app.TaskService
	Logger *logrus.Logger
}

func NewTaskHandler(svc *app.TaskService, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{Svc: svc, Logger: logger}
}

type createTaskRequest struct {
	Content     string `json:"content" binding:"required"`
	IsCompleted *bool  `json:"isCompleted"`
}

type updateTaskRequest struct {
	Content     *string `json:"content"`
	IsCompleted *bool   `json:"isCompleted"`
}

type listTasksQuery struct {
	Take        int     `form:"take"`
	PrevEndID   *int64  `form:"prevEndId"`
	Content     *string `form:"content"`
	IsCompleted *bool   `form:"isCompleted"`
}

type searchTasksQuery struct {
	Q    string `form:"q"`
	Size int    `form:"size" binding:"omitempty,min=1,max=50"`
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	t, err := h.Svc.CreateTask(c.Request.Context(), middleware.UserID(c), app.CreateTaskInput{
		Content:     req.Content,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toTaskResponse(t), "task created", nil)
}

// List handles GET /task?take=&prevEndId=&content=&isCompleted=.
func (h *TaskHandler) List(c *gin.Context) {
	var q listTasksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	page, err := h.Svc.ListTasks(c.Request.Context(), middleware.UserID(c), app.ListTasksQuery{
		Take:        q.Take,
		PrevEndID:   q.PrevEndID,
		Content:     q.Content,
		IsCompleted: q.IsCompleted,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toTaskPageResponse(page), "tasks", nil)
}

func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	t, err := h.Svc.GetTask(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toTaskResponse(t), "task", nil)
}

func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	t, err := h.Svc.UpdateTask(c.Request.Context(), middleware.UserID(c), id, app.UpdateTaskInput{
		Content:     req.Content,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toTaskResponse(t), "task updated", nil)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	n, err := h.Svc.DeleteTask(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"affected": n}, "task deleted", nil)
}

// Search handles GET /search/tasks?q=&size=.
func (h *TaskHandler) Search(c *gin.Context) {
	var q searchTasksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	tasks, err := h.Svc.SearchTasks(c.Request.Context(), middleware.UserID(c), q.Q, q.Size)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	// wrapped so an empty result still renders; the envelope omits empty data
	response.Success(c, http.StatusOK, gin.H{"tasks": toTaskResponses(tasks)}, "search results", nil)
}

// taskID parses the :id path parameter, writing a 400 when it is not a positive integer.
func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error[any](c, http.StatusBadRequest, "invalid request", response.ErrorBody{
			Code:    codeValidation,
			Details: map[string]string{"id": "must be a positive integer id"},
		})
		return 0, false
	}
	return id, true
}
