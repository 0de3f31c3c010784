// internal/interfaces/http/handlers/respond_test.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

func respondTo(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestRespondErrorStatusMapping(t *testing.T) {
	status, _ := respondTo(t, apperr.Validation("bad pincode"))
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = respondTo(t, apperr.NotFound("order x not found"))
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = respondTo(t, apperr.Gateway("gateway down", nil))
	assert.Equal(t, http.StatusBadGateway, status)

	status, _ = respondTo(t, apperr.Verification("signature mismatch", nil))
	assert.Equal(t, http.StatusConflict, status)

	status, _ = respondTo(t, apperr.Transient("failed to retrieve order", nil))
	assert.Equal(t, http.StatusServiceUnavailable, status)

	status, _ = respondTo(t, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestRespondErrorRetryableMarkers(t *testing.T) {
	_, body := respondTo(t, apperr.Gateway("gateway down", nil))
	assert.Equal(t, true, body["retryable"])

	// A failed invoice fetch mutated nothing; the client retries unchanged.
	_, body = respondTo(t, apperr.Transient("failed to retrieve order", nil))
	assert.Equal(t, true, body["retryable"])

	_, body = respondTo(t, apperr.Verification("signature mismatch", nil))
	assert.Equal(t, false, body["retryable"])

	_, body = respondTo(t, apperr.Validation("bad pincode"))
	assert.NotContains(t, body, "retryable")
}

func TestRespondErrorMasksInternals(t *testing.T) {
	_, body := respondTo(t, errors.New("pq: connection refused at 10.0.0.3"))
	assert.Equal(t, "internal server error", body["error"])
}
