package security

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"splitters/internal/rate_limiter"
	custom_error "splitters/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRouter(t *testing.T, limit int) (*gin.Engine, *int) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gate := NewGate(SharedSecret("123456"), zap.NewNop())
	tokens := NewTokenIssuer([]byte("test-secret"), time.Minute)
	rl := rate_limiter.NewRateLimiter(limit, time.Minute)
	t.Cleanup(rl.Stop)

	deletes := 0
	router := gin.New()
	NewConfirmHandler(gate, tokens, rl).RegisterRoutes(router)
	router.DELETE("/locations/:id", RequireConfirmation(gate, tokens, rl), func(c *gin.Context) {
		deletes++
		c.JSON(http.StatusOK, gin.H{"message": "Location deleted successfully"})
	})

	return router, &deletes
}

func TestRequireConfirmationWithPassword(t *testing.T) {
	router, deletes := setupRouter(t, 10)

	req := httptest.NewRequest(http.MethodDelete, "/locations/1", nil)
	req.Header.Set(PasswordHeader, "123456")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *deletes)
}

func TestRequireConfirmationRejectsWrongPassword(t *testing.T) {
	router, deletes := setupRouter(t, 10)

	req := httptest.NewRequest(http.MethodDelete, "/locations/1", nil)
	req.Header.Set(PasswordHeader, "000000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, *deletes)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, custom_error.IncorrectPasswordMessage, body["error"])
}

func TestConfirmTokenAuthorizesDelete(t *testing.T) {
	router, deletes := setupRouter(t, 10)

	body, _ := json.Marshal(map[string]string{"password": "123456"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/confirm", bytes.NewBuffer(body)))
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])

	req := httptest.NewRequest(http.MethodDelete, "/locations/1", nil)
	req.Header.Set("Authorization", "Bearer "+resp["token"])
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *deletes)
}

func TestConfirmIsRateLimited(t *testing.T) {
	router, _ := setupRouter(t, 2)
	body, _ := json.Marshal(map[string]string{"password": "wrong"})

	codes := []int{}
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/confirm", bytes.NewBuffer(body)))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func TestRequireConfirmationPasswordIsRateLimited(t *testing.T) {
	router, deletes := setupRouter(t, 3)

	codes := []int{}
	var last *httptest.ResponseRecorder
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodDelete, "/locations/1", nil)
		req.Header.Set(PasswordHeader, "000000")
		last = httptest.NewRecorder()
		router.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "3", last.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))

	req := httptest.NewRequest(http.MethodDelete, "/locations/1", nil)
	req.Header.Set(PasswordHeader, "123456")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 0, *deletes)
}
