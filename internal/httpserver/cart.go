package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"minicart/internal/controller"
)

type cartHandler struct {
	ctrl *controller.Controller
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type tokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *cartHandler) page(c *gin.Context) {
	// Each page load is one fresh attempt after a failed one; the breaker in
	// the source keeps a dead feed from being hammered.
	if h.ctrl.ErrorState() {
		_ = h.ctrl.Load(c.Request.Context())
	}
	c.HTML(http.StatusOK, "cart.html", h.ctrl.Page())
}

func (h *cartHandler) setQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity required"})
		return
	}
	patch := h.ctrl.SetQuantity(c.Request.Context(), c.Param("itemID"), *req.Quantity)
	c.JSON(http.StatusOK, patch)
}

func (h *cartHandler) beginRemoval(c *gin.Context) {
	pending, ok := h.ctrl.BeginRemoval(c.Param("itemID"))
	if !ok {
		// Unknown items are ignored, not an error to the user.
		c.JSON(http.StatusOK, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "pending": pending})
}

func (h *cartHandler) cancelRemoval(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": h.ctrl.CancelRemoval(req.Token)})
}

func (h *cartHandler) confirmRemoval(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}
	patch, ok := h.ctrl.ConfirmRemoval(c.Request.Context(), req.Token)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "patch": patch})
}

func (h *cartHandler) checkout(c *gin.Context) {
	target, err := h.ctrl.Checkout(c.Request.Context())
	if err != nil {
		if errors.Is(err, controller.ErrEmptyCart) {
			c.JSON(http.StatusConflict, gin.H{"error": "Your cart is empty."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkoutUrl": target})
}
