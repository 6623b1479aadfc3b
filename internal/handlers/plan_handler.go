package handlers

import (
	"net/http"

	"dealvalue_backend/internal/models"
	"dealvalue_backend/internal/services"
	"dealvalue_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	*BaseHandler
	planService services.PlanService
}

func NewPlanHandler(base *BaseHandler, planService services.PlanService) *PlanHandler {
	return &PlanHandler{
		BaseHandler: base,
		planService: planService,
	}
}

func (h *PlanHandler) RegisterRoutes(r *gin.RouterGroup) {
	plans := r.Group("/plan")
	{
		plans.POST("", h.CreatePlan)
		plans.GET("", h.ListPlans)
		plans.PUT("", h.UpdatePlan)
		plans.GET("/:id", h.GetPlan)
		plans.DELETE("/:id/:rev", h.DeletePlan)

		plans.PUT("/purchase/:id/:userId", h.Subscribe)
		plans.PUT("/purchase/:id/:userId/:partnerId", h.Subscribe)
		plans.PUT("/cancel/:userId", h.Cancel)
		plans.POST("/credits", h.BuyCredits)

		plans.POST("/pix", h.ChargePix)
		plans.GET("/payments/:paymentId/status", h.PaymentStatus)
		plans.GET("/payments/:paymentId/pix-qrcode", h.PixQRCode)
	}
}

// --- CRUD ---

func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var plan models.Plan
	if !h.BindAndValidate_JSON(c, &plan) {
		return
	}

	res, err := h.planService.Create(c.Request.Context(), &plan)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	plan, err := h.planService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// UpdatePlan - PUT /plan, _id и _rev передаются в теле
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	var plan models.Plan
	if !h.BindAndValidate_JSON(c, &plan) {
		return
	}

	res, err := h.planService.Update(c.Request.Context(), &plan)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PlanHandler) DeletePlan(c *gin.Context) {
	res, err := h.planService.Delete(c.Request.Context(), c.Param("id"), c.Param("rev"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PlanHandler) ListPlans(c *gin.Context) {
	list, err := h.planService.List(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// --- Subscriptions & payments ---

func (h *PlanHandler) Subscribe(c *gin.Context) {
	body, err := h.planService.Subscribe(c.Request.Context(),
		c.Param("id"),
		c.Param("userId"),
		c.Param("partnerId"),
		c.ClientIP(),
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Data(http.StatusOK, gin.MIMEJSON, body)
}

func (h *PlanHandler) Cancel(c *gin.Context) {
	body, err := h.planService.Cancel(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Data(http.StatusOK, gin.MIMEJSON, body)
}

func (h *PlanHandler) BuyCredits(c *gin.Context) {
	var req dto.BuyCreditsRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	res, err := h.planService.BuyCredits(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PlanHandler) ChargePix(c *gin.Context) {
	var req dto.PixChargeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	body, err := h.planService.ChargePix(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Data(http.StatusOK, gin.MIMEJSON, body)
}

func (h *PlanHandler) PaymentStatus(c *gin.Context) {
	body, err := h.planService.PaymentStatus(c.Request.Context(), c.Param("paymentId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Data(http.StatusOK, gin.MIMEJSON, body)
}

func (h *PlanHandler) PixQRCode(c *gin.Context) {
	body, err := h.planService.PixQRCode(c.Request.Context(), c.Param("paymentId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Data(http.StatusOK, gin.MIMEJSON, body)
}
