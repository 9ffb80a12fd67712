package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"skillbridge/internal/storage"
)

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"lastModified,omitempty"`
}

type ResumeURLResponse struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt"`
}

func (h *Handler) listResumes(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "resume archive is not configured"})
		return
	}

	sessionID := strings.TrimSpace(c.Query("session"))
	if sessionID == "" {
		badRequest(c, "session is required")
		return
	}
	objects, err := h.archive.List(c.Request.Context(), sessionID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) resumeURL(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "resume archive is not configured"})
		return
	}
	key := strings.TrimSpace(c.Query("key"))
	if key == "" {
		badRequest(c, "key is required")
		return
	}

	expiresAt := time.Now().Add(h.resumeURLTTL).UTC()
	url, err := h.archive.URL(c.Request.Context(), key, h.resumeURLTTL)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ResumeURLResponse{
		Key:       key,
		URL:       url,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}

func (h *Handler) deleteResumes(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "resume archive is not configured"})
		return
	}
	sessionID := strings.TrimSpace(c.Param("session"))
	if sessionID == "" || strings.Contains(sessionID, "..") {
		badRequest(c, "invalid session id")
		return
	}
	if err := h.archive.DeleteSession(c.Request.Context(), sessionID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
