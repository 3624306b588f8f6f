package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/khoahotran/usermatch/pkg/apperror"
	"github.com/khoahotran/usermatch/pkg/logger"
)

const (
	HeaderRequestID        = "X-Request-ID"
	GinContextKeyRequestID = "requestID"
)

// RequestIDMiddleware propagates the caller's X-Request-ID or mints one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(GinContextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func GetRequestIDFromGinContext(c *gin.Context) string {
	return c.GetString(GinContextKeyRequestID)
}

// TracingMiddleware opens a server span per request so use case spans
// nest under it.
func TracingMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer("http")
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+c.FullPath(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Request.Method),
				attribute.String("http.route", c.FullPath()),
				attribute.String("request_id", GetRequestIDFromGinContext(c)),
			),
		)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

func RequestLoggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", GetRequestIDFromGinContext(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
		}
		log.Info("HTTP request", fields...)
	}
}

// ErrorMiddleware renders the last error pushed with c.Error.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := apperror.ToHTTPStatus(err)

		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			appErr = apperror.NewInternal("unhandled error", err)
		}

		if status >= 500 {
			log.Error("Request failed", err,
				zap.String("request_id", GetRequestIDFromGinContext(c)),
				zap.String("path", c.Request.URL.Path),
			)
		}
		c.AbortWithStatusJSON(status, appErr.ToJSON())
	}
}

// RateCounter counts hits for a key within a window.
type RateCounter interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimitMiddleware allows limit requests per client IP per fixed window.
// Counter failures let the request through.
func RateLimitMiddleware(counter RateCounter, limit int, window time.Duration, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket := time.Now().UnixNano() / int64(window)
		key := fmt.Sprintf("ratelimit:%s:%d", c.ClientIP(), bucket)

		count, err := counter.Increment(c.Request.Context(), key, window)
		if err != nil {
			log.Warn("Rate limiter unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}

		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(limit) {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.Error(apperror.NewRateLimited(fmt.Sprintf("limit of %d requests per %s exceeded", limit, window)))
			c.Abort()
			return
		}
		c.Next()
	}
}
