package handlers

import (
	"errors"
	"net/http"

	"dealvalue_backend/internal/logger"
	"dealvalue_backend/internal/models"
	"dealvalue_backend/internal/services"
	"dealvalue_backend/internal/services/dto"
	"dealvalue_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

const uploadField = "file"

// запас на заголовки multipart поверх размера файла
const multipartOverhead = 1 << 20

type UserHandler struct {
	*BaseHandler
	userService   services.UserService
	uploadService services.UploadService
	emailService  *services.EmailService
}

func NewUserHandler(base *BaseHandler, userService services.UserService, uploadService services.UploadService, emailService *services.EmailService) *UserHandler {
	return &UserHandler{
		BaseHandler:   base,
		userService:   userService,
		uploadService: uploadService,
		emailService:  emailService,
	}
}

func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/user")
	{
		users.POST("", h.CreateUser)
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id/:rev/:customerId", h.DeleteUser)
		users.DELETE("/special/users/non-admins", h.DeleteNonAdmins)

		users.PUT("/asaas/:id", h.Onboard)

		users.POST("/api/send-email", h.SendEmail)
		users.POST("/upload", h.Upload)
	}
}

// --- CRUD ---

func (h *UserHandler) CreateUser(c *gin.Context) {
	var user models.User
	if !h.BindAndValidate_JSON(c, &user) {
		return
	}

	res, err := h.userService.Create(c.Request.Context(), &user)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var user models.User
	if !h.BindAndValidate_JSON(c, &user) {
		return
	}

	res, err := h.userService.Update(c.Request.Context(), c.Param("id"), &user)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	list, err := h.userService.List(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	res, err := h.userService.Delete(c.Request.Context(), c.Param("id"), c.Param("rev"), c.Param("customerId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *UserHandler) DeleteNonAdmins(c *gin.Context) {
	res, err := h.userService.DeleteNonAdmins(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// --- Gateway ---

// Onboard - PUT /user/asaas/:id, регистрация пользователя в платежном шлюзе
func (h *UserHandler) Onboard(c *gin.Context) {
	id, ok := RequireParam(c, "id")
	if !ok {
		return
	}

	res, err := h.userService.Onboard(c.Request.Context(), id, c.ClientIP())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// --- Email & uploads ---

func (h *UserHandler) SendEmail(c *gin.Context) {
	var req dto.SendEmailRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	res, err := h.emailService.Send(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *UserHandler) Upload(c *gin.Context) {
	if maxSize := h.uploadService.MaxSize(); maxSize > 0 {
		limit := maxSize + multipartOverhead
		if c.Request.ContentLength > limit {
			apperrors.HandleError(c, apperrors.ErrFileTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	header, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.CtxWarn(c.Request.Context(), "Upload body exceeds limit", "limit", tooLarge.Limit)
			apperrors.HandleError(c, apperrors.ErrFileTooLarge)
			return
		}
		logger.CtxWarn(c.Request.Context(), "Upload without file", "error", err.Error())
		apperrors.HandleError(c, apperrors.ErrMissingFile)
		return
	}

	res, err := h.uploadService.Upload(c.Request.Context(), uploadField, header)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
