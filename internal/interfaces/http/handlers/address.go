// internal/interfaces/http/handlers/address.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

// AddressHandler manages the user's saved delivery addresses
type AddressHandler struct {
	addresses *user.AddressService
}

// NewAddressHandler creates a new address handler
func NewAddressHandler(addresses *user.AddressService) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

// List handles GET /users/addresses
func (h *AddressHandler) List(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	addresses, err := h.addresses.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

// Create handles POST /users/addresses
func (h *AddressHandler) Create(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req user.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	addr, err := h.addresses.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, addr)
}

// Update handles PUT /users/addresses/:id
func (h *AddressHandler) Update(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	addressID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req user.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	addr, err := h.addresses.Update(c.Request.Context(), userID, addressID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, addr)
}

// Delete handles DELETE /users/addresses/:id
func (h *AddressHandler) Delete(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	addressID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.addresses.Delete(c.Request.Context(), userID, addressID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, apperr.Validation("invalid %s parameter", name)
	}
	return uint(v), nil
}
