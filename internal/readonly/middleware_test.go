package readonly

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(m *Middleware) *gin.Engine {
	router := gin.New()
	router.Use(m.InjectContext())
	router.Use(m.Handler())
	handler := func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
	router.GET("/api/books", handler)
	router.POST("/api/books", handler)
	router.PATCH("/api/books/:slug", handler)
	router.POST("/books", handler)
	return router
}

func TestNewMiddleware(t *testing.T) {
	assert.True(t, NewMiddleware(true).IsEnabled())
	assert.False(t, NewMiddleware(false).IsEnabled())
}

func TestMiddleware_AllowsReads(t *testing.T) {
	router := newRouter(NewMiddleware(true))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/books", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestMiddleware_BlocksAPIWrites(t *testing.T) {
	router := newRouter(NewMiddleware(true))

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/api/books", nil),
		httptest.NewRequest(http.MethodPatch, "/api/books/clean-code", nil),
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code, req.Method)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, true, body["read_only"])
	}
}

func TestMiddleware_BlocksFormWritesAsText(t *testing.T) {
	router := newRouter(NewMiddleware(true))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/books", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, blockedMessage, w.Body.String())
}

func TestMiddleware_DisabledPassesEverything(t *testing.T) {
	router := newRouter(NewMiddleware(false))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/books", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddleware_InjectContext(t *testing.T) {
	var flag any
	router := gin.New()
	router.Use(NewMiddleware(true).InjectContext())
	router.GET("/", func(c *gin.Context) {
		flag, _ = c.Get(ContextKey)
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, true, flag)
}
