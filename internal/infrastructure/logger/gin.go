package logger

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// gin context keys shared with the HTTP middleware
const (
	ginLoggerKey    = "logger"
	ginRequestIDKey = "request_id"
)

// orderCodeParams name the query parameter that carries our order code in
// each gateway's callback
var orderCodeParams = []string{"vnp_TxnRef", "orderId"}

// GinMiddleware logs one line per request and stores a request-scoped
// logger in the gin context and the request context. Query values are
// never logged since gateway callbacks carry signatures there; the order
// code is lifted out so access logs join up with reconciliation logs.
func GinMiddleware(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetString(ginRequestIDKey)

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		}
		query := c.Request.URL.Query()
		if code := callbackOrderCode(query); code != "" {
			fields = append(fields, zap.String("order_code", code))
		}
		reqLogger := base.With(fields...)

		ctx := c.Request.Context()
		if requestID != "" {
			ctx = WithRequestID(ctx, requestID)
		}
		c.Set(ginLoggerKey, reqLogger)
		c.Request = c.Request.WithContext(WithContext(ctx, reqLogger))

		c.Next()

		status := c.Writer.Status()
		done := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if len(query) > 0 {
			done = append(done, zap.Strings("query_keys", sortedKeys(query)))
		}
		if len(c.Errors) > 0 {
			done = append(done, zap.Strings("errors", c.Errors.Errors()))
		}
		if ce := reqLogger.Check(levelForStatus(status), "HTTP Request"); ce != nil {
			ce.Write(done...)
		}
	}
}

func levelForStatus(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

func callbackOrderCode(query url.Values) string {
	for _, p := range orderCodeParams {
		if v := strings.TrimSpace(query.Get(p)); v != "" && len(v) <= 64 {
			return v
		}
	}
	return ""
}

func sortedKeys(query url.Values) []string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Recovery turns a handler panic into a 500 and logs it with the stack
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				base.Error("Panic recovered",
					zap.String("request_id", c.GetString(ginRequestIDKey)),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", err),
					zap.Stack("stacktrace"),
				)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// GetGinLogger returns the request-scoped logger, or a no-op logger
func GetGinLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Get(ginLoggerKey); ok {
		if zl, ok := l.(*zap.Logger); ok {
			return zl
		}
	}
	return zap.NewNop()
}
