// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

// CartHandler serves cart reads and mutations for authenticated users, and
// guest cart additions keyed by X-Session-ID.
type CartHandler struct {
	carts *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

// Get handles GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperr.Validation("authentication required to view the cart"))
		return
	}

	snap, err := h.carts.Snapshot(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// AddItem handles POST /cart/items for both authenticated users and guests.
func (h *CartHandler) AddItem(c *gin.Context) {
	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		snap, err := h.carts.Add(c.Request.Context(), userID, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
		return
	}

	sessionID := c.GetHeader("X-Session-ID")
	guestCart, err := h.carts.AddToGuestCart(c.Request.Context(), sessionID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, guestCart)
}

// UpdateItem handles PUT /cart/items/:id where id is the product id. A zero
// quantity removes the line.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperr.Validation("authentication required to update the cart"))
		return
	}

	productID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req cart.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	snap, err := h.carts.UpdateQuantity(c.Request.Context(), userID, productID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Clear handles DELETE /cart
func (h *CartHandler) Clear(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, apperr.Validation("authentication required to clear the cart"))
		return
	}

	if err := h.carts.Clear(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
