package handlers

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juancollazo-ch/monoparts-service/internal/logging"
)

// TraceIDFromHeader extrae TRACE_ID de "TRACE_ID/SPAN_ID;o=TRACE_TRUE".
func TraceIDFromHeader(h string) string {
	if slashIdx := strings.IndexByte(h, '/'); slashIdx != -1 {
		return h[:slashIdx]
	}
	return h
}

// WithLogging: logging con Trace ID compatible con GCP
func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extraer Trace ID de Cloud Run
		traceID := TraceIDFromHeader(r.Header.Get("X-Cloud-Trace-Context"))
		if traceID == "" {
			traceID = uuid.NewString()
		}

		// Obtener Project ID para el formato completo de trace
		projectID := os.Getenv("GCP_PROJECT")
		if projectID == "" {
			projectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
		}

		ctx := logging.WithTraceID(r.Context(), traceID)

		logFields := []zap.Field{
			zap.String("trace_id", traceID),
			zap.String("httpRequest.requestMethod", r.Method),
			zap.String("httpRequest.requestUrl", r.URL.Path),
			zap.String("httpRequest.remoteIp", r.RemoteAddr),
			zap.String("httpRequest.userAgent", r.UserAgent()),
		}
		if projectID != "" {
			logFields = append(logFields, zap.String("logging.googleapis.com/trace", fmt.Sprintf("projects/%s/traces/%s", projectID, traceID)))
		}
		zap.L().Info("Request started", logFields...)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		duration := time.Since(start)
		zap.L().Info("Request completed",
			zap.String("trace_id", traceID),
			zap.String("httpRequest.requestMethod", r.Method),
			zap.String("httpRequest.requestUrl", r.URL.Path),
			zap.Int("httpRequest.status", ww.Status()),
			zap.Int64("httpRequest.latency.milliseconds", duration.Milliseconds()),
			zap.Float64("httpRequest.latency.seconds", duration.Seconds()),
		)
	})
}
