package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocsHandler_ServesEveryRoute(t *testing.T) {
	h, err := NewDocsHandler()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.SpecJSON(rec, httptest.NewRequest(http.MethodGet, "/docs/openapi.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))

	for _, path := range []string{
		"/health",
		"/health/ready",
		"/api/v1/accounts",
		"/api/v1/accounts/{id}/balance",
		"/api/v1/accounts/{id}/transactions",
		"/api/v1/transactions/deposit",
		"/api/v1/transactions/withdraw",
		"/api/v1/transactions/transfer",
		"/api/v1/transactions/transfers/{correlation_id}",
	} {
		assert.Contains(t, doc.Paths, path)
	}
}

func TestDocsHandler_YAMLAndUI(t *testing.T) {
	h, err := NewDocsHandler()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.SpecYAML(rec, httptest.NewRequest(http.MethodGet, "/docs/openapi.yaml", nil))
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "openapi: 3.0.3")

	rec = httptest.NewRecorder()
	h.UI(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	assert.Contains(t, rec.Body.String(), "/docs/openapi.json")
}
