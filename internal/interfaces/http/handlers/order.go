// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/invoice"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/tax"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// OrderHandler serves the order history read paths. Tax breakdowns and
// invoice numbers are re-derived from stored values on every read; nothing
// here mutates an order.
type OrderHandler struct {
	orders *order.Service
	ledger *tax.Ledger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *order.Service, ledger *tax.Ledger) *OrderHandler {
	return &OrderHandler{orders: orders, ledger: ledger}
}

// List handles GET /orders with optional search and status filters.
func (h *OrderHandler) List(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var q order.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	orders, err := h.orders.List(c.Request.Context(), userID, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// orderDetail is an order enriched with its re-derived financial views.
type orderDetail struct {
	Order         *order.Order       `json:"order"`
	TaxBreakdown  tax.OrderBreakdown `json:"tax_breakdown"`
	InvoiceNumber invoice.Number     `json:"invoice_number"`
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	ord, err := h.orders.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	breakdown, err := h.ledger.ComputeOrder(ord.TaxInputs(), ord.TaxAmount, ord.TaxableBase())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orderDetail{
		Order:         ord,
		TaxBreakdown:  breakdown,
		InvoiceNumber: invoice.NumberFor(ord.InvoiceIdentity()),
	})
}
