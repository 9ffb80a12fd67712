package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"skillbridge/internal/assistant"
	"skillbridge/internal/auth"
	"skillbridge/internal/domain"
	"skillbridge/internal/service"
	"skillbridge/internal/storage"
)

// ResumeArchive is the read side of the resume archive.
type ResumeArchive interface {
	List(ctx context.Context, sessionID string) ([]storage.ObjectInfo, error)
	URL(ctx context.Context, key string, expires time.Duration) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Options carries the handler's collaborators. Users, Tokens and Archive are
// optional; their routes answer 404 when unset. Tokens requires Users.
type Options struct {
	Profiles  service.ProfileService
	Analyses  service.AnalysisService
	Assistant assistant.Dispatcher
	Users     service.UserService
	Tokens    *auth.TokenService
	Archive   ResumeArchive
	Metrics   HTTPRecorder
	Logger    logrus.FieldLogger

	MaxUploadBytes int64
	ResumeURLTTL   time.Duration
	RateLimit      rate.Limit
	RateBurst      int
	CORSOrigins    []string
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	profiles  service.ProfileService
	analyses  service.AnalysisService
	assistant assistant.Dispatcher
	users     service.UserService
	tokens    *auth.TokenService
	archive   ResumeArchive
	metrics   HTTPRecorder
	logger    logrus.FieldLogger
	limiter   *ipRateLimiter

	defaultProfileKey string
	maxUploadBytes    int64
	resumeURLTTL      time.Duration
	corsOrigins       []string
}

func NewHandler(opts Options) *Handler {
	if opts.Tokens != nil && opts.Users == nil {
		panic("http: Tokens requires Users")
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 5 << 20
	}
	if opts.ResumeURLTTL <= 0 {
		opts.ResumeURLTTL = 15 * time.Minute
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 10
	}
	return &Handler{
		profiles:          opts.Profiles,
		analyses:          opts.Analyses,
		assistant:         opts.Assistant,
		users:             opts.Users,
		tokens:            opts.Tokens,
		archive:           opts.Archive,
		metrics:           opts.Metrics,
		logger:            opts.Logger.WithField("component", "http"),
		limiter:           newIPRateLimiter(opts.RateLimit, opts.RateBurst),
		defaultProfileKey: domain.DefaultProfileKey,
		maxUploadBytes:    opts.MaxUploadBytes,
		resumeURLTTL:      opts.ResumeURLTTL,
		corsOrigins:       opts.CORSOrigins,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger, h.metrics))
	router.Use(corsMiddleware(h.corsOrigins))

	limited := h.limiter.middleware(h.logger)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		api.GET("/catalog", h.getCatalog)

		profile := api.Group("/profile", h.profileKeyMiddleware())
		{
			profile.GET("", h.getProfile)
			profile.PUT("", h.saveProfile)
			profile.PATCH("", h.updateProfile)
			profile.DELETE("", h.resetProfile)
			profile.POST("/certifications", h.addCertification)
			profile.DELETE("/certifications/:id", h.removeCertification)
			profile.POST("/courses", h.addCourse)
			profile.DELETE("/courses/:id", h.removeCourse)
			profile.POST("/projects", h.addProject)
			profile.DELETE("/projects/:id", h.removeProject)
			profile.POST("/experience", h.addExperience)
			profile.DELETE("/experience/:id", h.removeExperience)
			profile.POST("/exams", h.addExam)
			profile.DELETE("/exams/:id", h.removeExam)
		}

		api.POST("/analyses", limited, h.createAnalysis)
		api.GET("/analyses/:id", h.getAnalysis)
		api.GET("/analyses/:id/dashboard", h.getDashboard)
		api.POST("/analyses/:id/roadmap", h.sessionRoadmap)
		api.GET("/analyses/:id/report", h.getReport)
		api.POST("/analyses/:id/chat", limited, h.sendChat)
		api.GET("/analyses/:id/chat", h.getChat)
		api.GET("/roadmaps", h.searchRoadmap)

		resumes := api.Group("/resumes", h.requireUser())
		{
			resumes.GET("", h.listResumes)
			resumes.GET("/url", h.resumeURL)
			resumes.DELETE("/:session", h.deleteResumes)
		}

		if h.tokens != nil {
			api.POST("/auth/register", limited, h.register)
			api.POST("/auth/login", limited, h.login)
		}
	}
}
