// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/invoice"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/tax"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
)

// InvoiceHandler exports the PDF tax invoice of a settled order. All figures
// come from the stored order; nothing is recomputed from live rates.
type InvoiceHandler struct {
	orders *order.Service
	ledger *tax.Ledger
	pdf    *pdf.Service
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orders *order.Service, ledger *tax.Ledger, pdfService *pdf.Service) *InvoiceHandler {
	return &InvoiceHandler{orders: orders, ledger: ledger, pdf: pdfService}
}

// Export handles GET /orders/:id/invoice
func (h *InvoiceHandler) Export(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	ord, err := h.orders.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !ord.IsSettled() {
		respondError(c, apperr.Validation("invoice is available only after payment is settled"))
		return
	}

	breakdown, err := h.ledger.ComputeOrder(ord.TaxInputs(), ord.TaxAmount, ord.TaxableBase())
	if err != nil {
		respondError(c, err)
		return
	}

	number := invoice.NumberFor(ord.InvoiceIdentity())

	buf, err := h.pdf.GenerateInvoice(ord, breakdown, number)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("invoice-%s.pdf", number.Value)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
