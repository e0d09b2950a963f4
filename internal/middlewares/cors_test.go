package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsHandler(allowedOrigins []string) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return CORSMiddleware(allowedOrigins)(next)
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("listed origin is echoed back with Vary", func(t *testing.T) {
		handler := corsHandler([]string{"https://mundodosbots.com.br"})

		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.Header.Set("Origin", "https://mundodosbots.com.br")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://mundodosbots.com.br", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Values("Vary"), "Origin")
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("wildcard allows any origin without Vary", func(t *testing.T) {
		handler := corsHandler([]string{"*"})

		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.Header.Set("Origin", "https://qualquer.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.NotContains(t, rec.Header().Values("Vary"), "Origin")
	})

	t.Run("unlisted origin gets no CORS headers", func(t *testing.T) {
		handler := corsHandler([]string{"https://mundodosbots.com.br"})

		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("preflight is answered with 204 and never reaches the handler", func(t *testing.T) {
		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})
		handler := CORSMiddleware([]string{"https://mundodosbots.com.br"})(next)

		req := httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
		req.Header.Set("Origin", "https://mundodosbots.com.br")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.False(t, called)
		assert.Equal(t, "https://mundodosbots.com.br", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("origin matching ignores case", func(t *testing.T) {
		assert.Equal(t, "https://Mundo.Example.com",
			resolveOrigin("https://Mundo.Example.com", []string{"https://mundo.example.com"}))
		assert.Empty(t, resolveOrigin("", []string{"*"}))
	})
}
