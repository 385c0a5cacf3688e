package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
)

type stubTokens struct {
	userID uuid.UUID
	role   string
	err    error
}

func (s stubTokens) ParseAccess(string) (uuid.UUID, string, error) {
	return s.userID, s.role, s.err
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func serve(r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	r := newEngine()
	r.GET("/me", AuthMiddleware(stubTokens{userID: userID, role: "user"}), func(c *gin.Context) {
		id, _ := c.Get(ContextUserIDKey)
		c.String(http.StatusOK, id.(uuid.UUID).String())
	})
	r.GET("/bad", AuthMiddleware(stubTokens{err: errors.New("expired")}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := serve(r, http.MethodGet, "/me", "", map[string]string{"Authorization": "Bearer abc"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/bad", "", map[string]string{"Authorization": "Bearer abc"}).Code)
}

func TestAdminOnly(t *testing.T) {
	r := newEngine()
	r.GET("/admin", AuthMiddleware(stubTokens{userID: uuid.New(), role: "user"}), AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/root", AuthMiddleware(stubTokens{userID: uuid.New(), role: "admin"}), AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	auth := map[string]string{"Authorization": "Bearer abc"}
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/admin", "", auth).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/root", "", auth).Code)
}

func TestErrorHandler(t *testing.T) {
	r := newEngine()
	r.Use(ErrorHandler())
	r.GET("/typed", func(c *gin.Context) { _ = c.Error(apperror.ErrSlotConflict) })
	r.GET("/db", func(c *gin.Context) {
		_ = c.Error(apperror.Database(errors.New("pq: connection refused"), "не удалось"))
	})

	w := serve(r, http.MethodGet, "/typed", "", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"CONFLICT"`)

	w = serve(r, http.MethodGet, "/db", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
}

func TestRecovery(t *testing.T) {
	r := newEngine()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	assert.Equal(t, http.StatusInternalServerError, serve(r, http.MethodGet, "/panic", "", nil).Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newEngine()
	r.POST("/bookings", RateLimitMiddleware(memory.NewStore(), 2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/bookings", "", nil).Code)
	w := serve(r, http.MethodPost, "/bookings", "", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodPost, "/bookings", "", nil).Code)
}

func TestCORSMiddleware(t *testing.T) {
	r := newEngine()
	r.Use(CORSMiddleware([]string{"http://localhost:3000"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/x", "", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodGet, "/x", "", map[string]string{"Origin": "http://evil.example"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodOptions, "/x", "", nil).Code)
}

func TestUUIDValidator(t *testing.T) {
	r := newEngine()
	r.GET("/bookings/:id", UUIDValidator("id"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/bookings/not-a-uuid", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/bookings/"+uuid.NewString(), "", nil).Code)
}

func TestVerifySignature(t *testing.T) {
	const secret = "webhook-secret"
	body := `{"orderId":"dep-1","succeeded":true}`

	r := newEngine()
	r.POST("/webhook", VerifySignature(secret), func(c *gin.Context) {
		raw, err := c.GetRawData()
		require.NoError(t, err)
		c.String(http.StatusOK, string(raw))
	})

	w := serve(r, http.MethodPost, "/webhook", body, map[string]string{SignatureHeader: Sign(secret, []byte(body))})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body, w.Body.String())

	w = serve(r, http.MethodPost, "/webhook", body, map[string]string{SignatureHeader: Sign("other", []byte(body))})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodPost, "/webhook", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
