package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendSuccess(t *testing.T) {
	rr := httptest.NewRecorder()

	err := NewWriter(rr).SendSuccess(http.StatusCreated, "created", map[string]string{"id": "x"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"message":"created","data":{"id":"x"}}`, rr.Body.String())
}

func TestError(t *testing.T) {
	rr := httptest.NewRecorder()

	Error(rr, http.StatusBadRequest, "bad")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"success":false,"error":"bad"}`, rr.Body.String())
}
