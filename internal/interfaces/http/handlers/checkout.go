// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// CheckoutHandler exposes the checkout state machine to the client. Every
// endpoint is an event; the orchestrator decides whether it is legal in the
// session's current state.
type CheckoutHandler struct {
	orch *checkout.Orchestrator
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(orch *checkout.Orchestrator) *CheckoutHandler {
	return &CheckoutHandler{orch: orch}
}

// GetState handles GET /checkout
func (h *CheckoutHandler) GetState(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	session, err := h.orch.GetState(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Begin handles POST /checkout
func (h *CheckoutHandler) Begin(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	session, err := h.orch.Begin(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SubmitAddress handles POST /checkout/address
func (h *CheckoutHandler) SubmitAddress(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req checkout.SubmitAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.orch.SubmitAddress(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SelectPaymentMethod handles POST /checkout/payment-method
func (h *CheckoutHandler) SelectPaymentMethod(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req struct {
		Method order.PaymentMethod `json:"method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.orch.SelectPaymentMethod(c.Request.Context(), userID, req.Method)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ApplyCoupon handles POST /checkout/coupon
func (h *CheckoutHandler) ApplyCoupon(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.orch.ApplyCoupon(c.Request.Context(), userID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// RemoveCoupon handles DELETE /checkout/coupon
func (h *CheckoutHandler) RemoveCoupon(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	session, err := h.orch.RemoveCoupon(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ProceedToPayment handles POST /checkout/proceed
func (h *CheckoutHandler) ProceedToPayment(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	intent, err := h.orch.ProceedToPayment(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if intent.Method == order.MethodCashOnDelivery {
		middleware.CountSettlement(string(intent.Method))
	}
	c.JSON(http.StatusOK, intent)
}

// GatewayResult handles POST /checkout/gateway-result, the single callback
// the payment widget resolves to.
func (h *CheckoutHandler) GatewayResult(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var result checkout.GatewayResult
	if err := c.ShouldBindJSON(&result); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.orch.HandleGatewayResult(c.Request.Context(), userID, result)
	if err != nil {
		respondError(c, err)
		return
	}

	if session.State == checkout.StateSettled {
		middleware.CountSettlement(string(session.PaymentMethod))
	}
	c.JSON(http.StatusOK, session)
}
