package http

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"skillbridge/internal/domain"
	"skillbridge/internal/service"
)

// HTTPRecorder receives per-request metrics.
type HTTPRecorder interface {
	RecordHTTPStatus(statusCode int)
	RecordHTTPLatency(d time.Duration)
}

func requestLogger(logger logrus.FieldLogger, recorder HTTPRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		if recorder != nil {
			recorder.RecordHTTPStatus(status)
			recorder.RecordHTTPLatency(latency)
		}

		entry := logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    status,
			"latency":   latency.String(),
			"client_ip": c.ClientIP(),
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Warn("request")
		default:
			entry.Debug("request")
		}
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	config := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept", "Authorization"}
	config.ExposeHeaders = []string{"Content-Disposition"}
	return cors.New(config)
}

// clientLimiter is the token bucket of one client IP.
type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// ipRateLimiter throttles clients by IP. Idle entries are dropped lazily.
type ipRateLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

func newIPRateLimiter(limit rate.Limit, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		limit:   limit,
		burst:   burst,
		idle:    10 * time.Minute,
		now:     time.Now,
		clients: make(map[string]*clientLimiter),
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.idle {
		for key, cl := range l.clients {
			if now.Sub(cl.lastAccess) > l.idle {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}

	cl, ok := l.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = cl
	}
	cl.lastAccess = now
	return cl.limiter.AllowN(now, 1)
}

func (l *ipRateLimiter) middleware(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.allow(ip) {
			logger.WithFields(logrus.Fields{"client_ip": ip, "path": c.FullPath()}).Warn("rate limit exceeded")
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, slow down"})
			return
		}
		c.Next()
	}
}

const (
	profileKeyContext = "profileKey"
	userContext       = "user"
)

// authenticate resolves the bearer token to an existing account. On failure
// the request is aborted and false is returned.
func (h *Handler) authenticate(c *gin.Context) (*domain.User, bool) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return nil, false
	}
	claims, err := h.tokens.Parse(token)
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account no longer exists"})
			return nil, false
		}
		h.writeError(c, err)
		return nil, false
	}
	c.Set(userContext, user)
	return user, true
}

// requireUser guards routes that expose archived files. Without accounts it
// lets every request through.
func (h *Handler) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.tokens == nil {
			c.Next()
			return
		}
		if _, ok := h.authenticate(c); !ok {
			return
		}
		c.Next()
	}
}

// profileKeyMiddleware resolves the record key for the caller. Without
// accounts every caller shares the default key.
func (h *Handler) profileKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.tokens == nil {
			c.Set(profileKeyContext, h.defaultProfileKey)
			c.Next()
			return
		}
		user, ok := h.authenticate(c)
		if !ok {
			return
		}
		c.Set(profileKeyContext, user.ProfileKey())
		c.Next()
	}
}

func profileKey(c *gin.Context) string {
	return c.GetString(profileKeyContext)
}
