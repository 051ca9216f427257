package api

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"money-manager-backend/internal/models"
)

type responseCapture struct {
	writer     http.ResponseWriter
	statusCode int
}

func (resp *responseCapture) Write(body []byte) (int, error) {
	return resp.writer.Write(body)
}

func (resp *responseCapture) WriteHeader(statusCode int) {
	if resp.statusCode == 0 { // status code is written only once
		resp.statusCode = statusCode
		resp.writer.WriteHeader(statusCode)
	}
}

func (resp *responseCapture) Header() http.Header {
	return resp.writer.Header()
}

type Middleware struct {
	logger *zap.SugaredLogger
}

func NewLoggerMiddleware(logger *zap.SugaredLogger) *Middleware {
	return &Middleware{
		logger: logger,
	}
}

func (lm *Middleware) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(response http.ResponseWriter, req *http.Request) {
		responseWriter := &responseCapture{writer: response}

		startTime := time.Now()

		next.ServeHTTP(responseWriter, req)

		statusCode := responseWriter.statusCode
		if statusCode == 0 {
			statusCode = http.StatusOK
		}

		latency := time.Since(startTime).Seconds() * 1000

		lm.logger.With(
			"method", req.Method,
			"status_code", statusCode,
			"path", req.URL.Path,
			"user_agent", req.UserAgent(),
			"host", req.Host,
			"latency_ms", fmt.Sprintf("%.4fms", latency),
			"username", models.ClaimsFromContext(req.Context()).Name,
		).Infof("Request handled")
	}
}
