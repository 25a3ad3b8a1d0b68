package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handler "github.com/vasiliy-maslov/technova/internal/handler/http"
	"github.com/vasiliy-maslov/technova/internal/kvstore"
	"github.com/vasiliy-maslov/technova/internal/preferences"
)

func TestPreferencesHandler_Consent(t *testing.T) {
	h := handler.NewPreferencesHandler(preferences.NewService(kvstore.NewMemoryBackend()))
	router := newTestRouter(anonymous, h.RegisterRoutes)

	consent := func() *preferences.CookieConsent {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/preferences/consent", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		var resp handler.ConsentResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		return resp.Consent
	}

	assert.Nil(t, consent(), "banner not answered yet")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/preferences/consent", jsonBody(t, handler.ConsentRequest{Analytics: true})))
	require.Equal(t, http.StatusOK, rr.Code)

	got := consent()
	require.NotNil(t, got)
	assert.True(t, got.Necessary)
	assert.True(t, got.Analytics)
	assert.False(t, got.Marketing)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/preferences/consent", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Nil(t, consent())
}

func TestPreferencesHandler_Language(t *testing.T) {
	tests := []struct {
		name     string
		language string
		wantCode int
		wantLang string
	}{
		{name: "spanish", language: "es", wantCode: http.StatusOK, wantLang: "es"},
		{name: "unsupported", language: "fr", wantCode: http.StatusBadRequest, wantLang: preferences.DefaultLanguage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewPreferencesHandler(preferences.NewService(kvstore.NewMemoryBackend()))
			router := newTestRouter(anonymous, h.RegisterRoutes)

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/preferences/language", jsonBody(t, handler.LanguageRequest{Language: tt.language})))
			require.Equal(t, tt.wantCode, rr.Code)

			rr = httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/preferences/language", nil))
			require.Equal(t, http.StatusOK, rr.Code)
			var resp handler.LanguageResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, tt.wantLang, resp.Language)
			assert.Equal(t, preferences.SupportedLanguages, resp.Supported)
		})
	}
}
