package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tasktracker/internal/access"
	"tasktracker/internal/domain"
	"tasktracker/internal/service"
)

// Options carries the collaborators of Handler. Metrics, AuthLimiter and DB are optional.
type Options struct {
	Tasks       service.TaskService
	Users       service.UserService
	Tokens      service.TokenService
	Logger      *logrus.Logger
	Metrics     *Metrics
	AuthLimiter Limiter
	DB          Pinger
	Version     string
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	tasks       service.TaskService
	users       service.UserService
	tokens      service.TokenService
	log         *logrus.Logger
	metrics     *Metrics
	authLimiter Limiter
	health      *healthHandler
}

func NewHandler(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	return &Handler{
		tasks:       opts.Tasks,
		users:       opts.Users,
		tokens:      opts.Tokens,
		log:         opts.Logger,
		metrics:     opts.Metrics,
		authLimiter: opts.AuthLimiter,
		health:      newHealthHandler(opts.DB, opts.Version),
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(), requestLogger(h.log))
	if h.metrics != nil {
		router.Use(h.metrics.Middleware())
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	router.GET("/ping", h.health.ping)
	router.GET("/healthz", h.health.liveness)
	router.GET("/readyz", h.health.readiness)

	api := router.Group("/api")
	auth := api.Group("/auth")
	if h.authLimiter != nil {
		auth.Use(rateLimit(h.authLimiter, h.metrics, h.log))
	}
	{
		auth.POST("/signup", h.signup)
		auth.POST("/login", h.login)
	}

	tasks := api.Group("/tasks")
	tasks.Use(h.requireIdentity())
	{
		tasks.POST("", h.createTask)
		tasks.GET("", h.listTasks)
		tasks.PATCH("/:id", h.updateTask)
		tasks.DELETE("/:id", h.deleteTask)
	}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type updateTaskRequest struct {
	Title       *string        `json:"title"`
	Description optionalString `json:"description"`
	Status      *string        `json:"status"`
}

// optionalString tells an absent JSON key apart from an explicit null.
type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

func (r updateTaskRequest) patch() domain.TaskPatch {
	p := domain.TaskPatch{
		Title:          r.Title,
		Description:    r.Description.Value,
		DescriptionSet: r.Description.Set,
	}
	if r.Status != nil {
		st := domain.TaskStatus(*r.Status)
		p.Status = &st
	}
	return p
}

func (h *Handler) signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.NewValidationError("", "email and password are required"))
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusCreated, "user created successfully", user)
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.NewValidationError("", "email and password are required"))
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusOK, "successfully logged in", user)
}

func (h *Handler) respondWithToken(c *gin.Context, status int, message string, user *domain.User) {
	token, err := h.tokens.Issue(user)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(status, AuthResponse{
		Message: message,
		Token:   token,
		User:    userToResponse(user),
	})
}

func (h *Handler) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(c, domain.NewValidationError("", "invalid request body"))
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), identityFrom(c), access.NewTask{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, taskToResponse(*task))
}

func (h *Handler) listTasks(c *gin.Context) {
	page, err := h.tasks.ListTasks(c.Request.Context(), identityFrom(c), access.ListParams{
		Status: c.Query("status"),
		Page:   c.Query("page"),
		Limit:  c.Query("limit"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	data := make([]TaskResponse, len(page.Tasks))
	for i := range page.Tasks {
		data[i] = taskToResponse(page.Tasks[i])
	}
	c.JSON(http.StatusOK, TaskListResponse{
		Page:        page.Page,
		Limit:       page.Limit,
		TotalInPage: len(data),
		Data:        data,
	})
}

func (h *Handler) updateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(c, domain.NewValidationError("", "invalid request body"))
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), identityFrom(c), c.Param("id"), req.patch())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(*task))
}

func (h *Handler) deleteTask(c *gin.Context) {
	task, err := h.tasks.DeleteTask(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteTaskResponse{
		Message:     "task deleted successfully",
		DeletedTask: taskToResponse(*task),
	})
}

type UserResponse struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

type TaskResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	Status      domain.TaskStatus `json:"status"`
	UserID      string            `json:"user_id"`
	CreatedAt   string            `json:"created_at"`
}

type TaskListResponse struct {
	Page        int            `json:"page"`
	Limit       int            `json:"limit"`
	TotalInPage int            `json:"total_in_page"`
	Data        []TaskResponse `json:"data"`
}

type DeleteTaskResponse struct {
	Message     string       `json:"message"`
	DeletedTask TaskResponse `json:"deletedTask"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Role: u.Role}
}

func taskToResponse(task domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		UserID:      task.OwnerID,
		CreatedAt:   task.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
