package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequestLogger_PassesBodiesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger())
	r.POST("/echo", func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		c.Data(http.StatusOK, c.ContentType(), b)
	})

	payload := strings.Repeat("z", maxLoggedBodyBytes*3)
	for _, ct := range []string{"application/json", "video/mp4"} {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(payload))
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, payload, rec.Body.String(), ct)
	}
}

func TestIsLoggableContentType(t *testing.T) {
	assert.True(t, isLoggableContentType("application/json; charset=utf-8"))
	assert.True(t, isLoggableContentType(""))
	assert.False(t, isLoggableContentType("multipart/form-data; boundary=x"))
	assert.False(t, isLoggableContentType("video/mp4"))
}
