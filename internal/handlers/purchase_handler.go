package handlers

import (
	"net/http"

	"dealvalue_backend/internal/models"
	"dealvalue_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type PurchaseHandler struct {
	*BaseHandler
	purchaseService services.PurchaseService
}

func NewPurchaseHandler(base *BaseHandler, purchaseService services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		BaseHandler:     base,
		purchaseService: purchaseService,
	}
}

func (h *PurchaseHandler) RegisterRoutes(r *gin.RouterGroup) {
	purchases := r.Group("/purchase")
	{
		purchases.GET("", h.ListPurchases)
		purchases.POST("", h.CreatePurchase)
		purchases.GET("/:id", h.GetPurchase)
		purchases.PUT("/:id", h.UpdatePurchase)
		purchases.DELETE("/:id", h.DeletePurchase)
		purchases.DELETE("/:id/:rev", h.DeletePurchase)
	}
}

func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	var purchase models.Purchase
	if !h.BindAndValidate_JSON(c, &purchase) {
		return
	}

	res, err := h.purchaseService.Create(c.Request.Context(), &purchase)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	purchase, err := h.purchaseService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, purchase)
}

func (h *PurchaseHandler) UpdatePurchase(c *gin.Context) {
	var purchase models.Purchase
	if !h.BindAndValidate_JSON(c, &purchase) {
		return
	}

	res, err := h.purchaseService.Update(c.Request.Context(), c.Param("id"), &purchase)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// DeletePurchase - ревизия берется из пути или из ?rev=
func (h *PurchaseHandler) DeletePurchase(c *gin.Context) {
	res, err := h.purchaseService.Delete(c.Request.Context(), c.Param("id"), RevisionParam(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	list, err := h.purchaseService.List(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}
