package http

import (
	"context"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"camera-rental-backend/internal/config"
	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/logger"
	"camera-rental-backend/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

type contextKey string

const (
	operatorKey contextKey = "operator"
	tokenKey    contextKey = "bearer-token"
)

const requestIDHeader = "X-Request-ID"

// OperatorFromContext returns the operator resolved by the auth middleware.
func OperatorFromContext(ctx context.Context) (domain.Operator, bool) {
	op, ok := ctx.Value(operatorKey).(domain.Operator)
	return op, ok
}

func bearerFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// requestLogger tags every request with an id and stores a child logger in the
// context for downstream calls.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		l := logger.Get().With("requestID", id, "method", r.Method, "path", r.URL.Path)
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(logger.NewContext(r.Context(), l)))
		l.Debug("Request served", "duration", time.Since(start))
	})
}

func recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(r.Context(), "Panic recovered", "panic", rec, "stack", string(debug.Stack()))
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: errorBody{
					Code:    domain.ErrCodeInternal,
					Message: "internal server error",
				}})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requestTimeout bounds the context every store call runs under.
func requestTimeout(d time.Duration) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authMiddleware enforces the security level configured for the matched route.
type authMiddleware struct {
	auth service.AuthService
}

func (m *authMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		level := config.GetSecurityLevel(r.Method, route)
		if level == config.SecurityPublic || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := extractBearer(r)
		if !ok {
			writeError(w, r, domain.NewUnauthenticatedError("authorization token is not provided"))
			return
		}

		var (
			op  domain.Operator
			err error
		)
		switch level {
		case config.SecurityRefresh:
			op, err = m.auth.ParseRefresh(r.Context(), token)
		default:
			op, err = m.auth.Authenticate(r.Context(), token)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), operatorKey, op)
		ctx = context.WithValue(ctx, tokenKey, token)
		ctx = logger.NewContext(ctx, logger.FromContext(ctx).With("operatorID", op.ID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearer(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:]), true
	}
	return "", false
}

// loginLimiter throttles login attempts per client address.
type loginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newLoginLimiter(perMinute, burst int) *loginLimiter {
	return &loginLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
	}
}

func (l *loginLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	// TODO: evict idle limiters by last use instead of resetting the whole map
	if len(l.limiters) > 10000 {
		l.limiters = make(map[string]*rate.Limiter)
	}
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	return limiter
}

func (l *loginLimiter) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			key = r.RemoteAddr
		}
		if !l.get(key).Allow() {
			logger.WarnContext(r.Context(), "Login rate limit exceeded", "client", key)
			writeError(w, r, &domain.DomainError{Code: domain.ErrCodeRateLimited, Message: "too many login attempts, try again later"})
			return
		}
		next(w, r)
	}
}
