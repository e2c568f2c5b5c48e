package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONBody(t *testing.T) {
	type body struct {
		City string `json:"city"`
	}
	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{"valid", `{"city":"Almaty"}`, ""},
		{"empty", ``, "body must not be empty"},
		{"malformed", `{"city":`, "badly-formed JSON"},
		{"wrong type", `{"city":5}`, `incorrect JSON type for field "city"`},
		{"unknown field", `{"town":"Almaty"}`, `unknown key "town"`},
		{"trailing data", `{"city":"Almaty"}{}`, "single JSON value"},
		{"too large", `{"city":"` + strings.Repeat("a", maxBodyBytes) + `"}`, "must not be larger than"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.payload))
			var dst body
			err := DecodeJSONBody(httptest.NewRecorder(), r, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "Almaty", dst.City)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorResponse(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusBadRequest, "city is required")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, false, got["success"])
	assert.Equal(t, "city is required", got["error"])
}

func TestWriteJSONResponse_NoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONResponse(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusNoContent, map[string]string{"a": "b"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestVerifyAudience(t *testing.T) {
	assert.True(t, VerifyAudience(nil, ""))
	assert.False(t, VerifyAudience(nil, "planner"))
	assert.True(t, VerifyAudience(jwt.ClaimStrings{"web", "planner"}, "planner"))
	assert.False(t, VerifyAudience(jwt.ClaimStrings{"web"}, "planner"))
}
