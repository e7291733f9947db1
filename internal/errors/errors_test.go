package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestAPIError_Error(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad input")
	assert.Equal(t, "bad input", err.Error())
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusNotFound, TypeTabNotFound, "Not Found", "no such tab", "/api/charts/x").
		WithExtension("error_code", "TAB_NOT_FOUND")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, TypeTabNotFound, decoded["type"])
	assert.Equal(t, float64(404), decoded["status"])
	assert.Equal(t, "no such tab", decoded["detail"])
	assert.Equal(t, "TAB_NOT_FOUND", decoded["error_code"])
}

func TestErrorHandler_HandleError_APIError(t *testing.T) {
	handler := NewErrorHandler(testLogger(), false)

	req := httptest.NewRequest(http.MethodGet, "/api/charts/bogus", nil)
	rec := httptest.NewRecorder()

	handler.HandleError(rec, req, ErrTabNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var pd map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pd))
	assert.Equal(t, TypeTabNotFound, pd["type"])
	assert.Equal(t, "TAB_NOT_FOUND", pd["error_code"])
}

func TestErrorHandler_HandleError_GenericError(t *testing.T) {
	handler := NewErrorHandler(testLogger(), false)

	req := httptest.NewRequest(http.MethodGet, "/api/countries", nil)
	rec := httptest.NewRecorder()

	handler.HandleError(rec, req, fmt.Errorf("something broke"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var pd map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pd))
	assert.Equal(t, TypeInternal, pd["type"])
}

func TestErrorHandler_NotFound(t *testing.T) {
	handler := NewErrorHandler(testLogger(), false)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()

	handler.NotFound(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrValidation("year", "out of range"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.ErrorCode)
}
