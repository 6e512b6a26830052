package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLoginOverHTTP(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doJSON(t, router, "POST", "/api/v1/auth/register", "", map[string]interface{}{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"])

	w = doJSON(t, router, "POST", "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["token"])

	w = doJSON(t, router, "POST", "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	router, _ := setupTestRouter(t)

	payload := map[string]interface{}{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "password123",
	}
	w := doJSON(t, router, "POST", "/api/v1/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, "POST", "/api/v1/auth/register", "", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterRejectsMalformedBody(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doJSON(t, router, "POST", "/api/v1/auth/register", "", map[string]interface{}{
		"name":  "Alice",
		"email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
