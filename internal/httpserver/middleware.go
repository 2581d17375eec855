package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"personal-budget/internal/metrics"
)

const RequestIdentifierHeader = "X-Request-ID"

type requestIdentifierKey struct{}

// requestIdentifier propagates the caller's X-Request-ID or assigns a new one.
func requestIdentifier(next http.Handler) http.Handler {
	return http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		identifier := request.Header.Get(RequestIdentifierHeader)
		if identifier == "" {
			identifier = uuid.NewString()
		}

		responseWriter.Header().Set(RequestIdentifierHeader, identifier)
		requestContext := context.WithValue(request.Context(), requestIdentifierKey{}, identifier)
		next.ServeHTTP(responseWriter, request.WithContext(requestContext))
	})
}

func RequestIdentifierFromContext(requestContext context.Context) string {
	identifier, _ := requestContext.Value(requestIdentifierKey{}).(string)
	return identifier
}

// observeRequests records the access log line and request metrics once the
// route pattern is known.
func (server *Server) observeRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		startedAt := time.Now()
		wrappedWriter := middleware.NewWrapResponseWriter(responseWriter, request.ProtoMajor)

		next.ServeHTTP(wrappedWriter, request)

		routePattern := "unmatched"
		if routeContext := chi.RouteContext(request.Context()); routeContext != nil && routeContext.RoutePattern() != "" {
			routePattern = routeContext.RoutePattern()
		}

		statusCode := wrappedWriter.Status()
		if statusCode == 0 {
			statusCode = http.StatusOK
		}
		elapsed := time.Since(startedAt)

		metrics.HTTPRequests.WithLabelValues(request.Method, routePattern, strconv.Itoa(statusCode)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(request.Method, routePattern).Observe(elapsed.Seconds())

		server.Logger.Info("http request",
			zap.String("request_id", RequestIdentifierFromContext(request.Context())),
			zap.String("method", request.Method),
			zap.String("route", routePattern),
			zap.String("path", request.URL.Path),
			zap.Int("status", statusCode),
			zap.Int("bytes", wrappedWriter.BytesWritten()),
			zap.Duration("duration", elapsed),
		)
	})
}

// corsPolicy admits browser requests from the single configured origin with credentials.
func corsPolicy(allowedOrigin string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions, http.MethodHead},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{RequestIdentifierHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
