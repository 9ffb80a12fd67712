package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"skillbridge/internal/assistant"
	"skillbridge/internal/auth"
	"skillbridge/internal/resume"
	"skillbridge/internal/service"
	"skillbridge/internal/session"
	"skillbridge/internal/storage"
)

const internalErrorMessage = "something went wrong, please try again"

// statusFor maps a service error to its HTTP status. Zero means unexpected.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrNothingToAnalyze),
		errors.Is(err, service.ErrRegistrationClosed),
		errors.Is(err, assistant.ErrEmptyMessage),
		errors.Is(err, storage.ErrOutsideArchive),
		errors.Is(err, storage.ErrInvalidSession):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidRegistrationPassword),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDashboardUnavailable),
		errors.Is(err, service.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, resume.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, assistant.ErrBusy):
		return http.StatusTooManyRequests
	case errors.Is(err, assistant.ErrNotRunning):
		return http.StatusServiceUnavailable
	}
	return 0
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == 0 {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
		return
	}

	body := gin.H{"error": err.Error()}
	switch {
	case errors.Is(err, service.ErrDashboardUnavailable):
		body["redirect"] = "/analyze"
	case status == http.StatusRequestEntityTooLarge:
		body["error"] = "upload is too large"
	case status == http.StatusUnsupportedMediaType:
		body["error"] = "unsupported resume format, use .txt, .md, .pdf or .docx"
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
