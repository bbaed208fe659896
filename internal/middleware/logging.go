package middleware

import (
	"bytes"
	"io"
	"strings"
	"time"
	"vidhub-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// maxLoggedBodyBytes 限制单条日志记录的请求体/响应体长度。
const maxLoggedBodyBytes = 4 << 10

// bodyLogWriter 用于捕获响应体
type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write 同时写入 gin.ResponseWriter 和内部 buffer，视频等二进制响应不缓存。
func (w *bodyLogWriter) Write(b []byte) (int, error) {
	if isLoggableContentType(w.Header().Get("Content-Type")) {
		if room := maxLoggedBodyBytes + 1 - w.body.Len(); room > 0 {
			if len(b) < room {
				room = len(b)
			}
			w.body.Write(b[:room])
		}
	}
	return w.ResponseWriter.Write(b)
}

// isLoggableContentType 判断内容是否为可读文本，multipart 上传和视频流不进入日志。
func isLoggableContentType(contentType string) bool {
	if contentType == "" {
		return true
	}
	return strings.HasPrefix(contentType, "application/json") ||
		strings.HasPrefix(contentType, "text/") ||
		strings.HasPrefix(contentType, "application/x-www-form-urlencoded")
}

func truncate(b []byte) string {
	if len(b) > maxLoggedBodyBytes {
		return string(b[:maxLoggedBodyBytes]) + "...(truncated)"
	}
	return string(b)
}

// RequestLogger 是一个 Gin 中间件，用于记录请求和响应日志。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		// 只缓存文本请求体，上传的视频直接交给处理函数流式读取
		var requestBody []byte
		if c.Request.Body != nil && isLoggableContentType(c.ContentType()) {
			requestBody, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxLoggedBodyBytes+1))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(requestBody), c.Request.Body))
		}

		blw := &bodyLogWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		log.Infow("HTTP Request Log",
			"statusCode", c.Writer.Status(),
			"latency", time.Since(startTime).String(),
			"clientIP", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"requestBody", truncate(requestBody),
			"responseBody", truncate(blw.body.Bytes()),
		)
	}
}
