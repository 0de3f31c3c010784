// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

// respondError maps the application error taxonomy onto HTTP statuses.
// Validation errors are correctable in place; gateway errors are retryable;
// verification errors are not retryable for the attempt and say so.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindGateway:
		status = http.StatusBadGateway
	case apperr.KindVerification:
		status = http.StatusConflict
	case apperr.KindTransient:
		status = http.StatusServiceUnavailable
	}

	body := gin.H{"error": err.Error(), "kind": string(kind)}
	if kind == apperr.KindGateway || kind == apperr.KindTransient {
		body["retryable"] = true
	}
	if kind == apperr.KindVerification {
		body["retryable"] = false
		body["support"] = "contact support before retrying this payment"
	}
	if kind == apperr.KindInternal {
		// Do not leak internals to the client.
		body["error"] = "internal server error"
	}

	c.JSON(status, body)
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "validation"})
}
