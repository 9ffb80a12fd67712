package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"skillbridge/internal/domain"
	"skillbridge/internal/service"
)

type certificationRequest struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Year   string `json:"year"`
}

// EntryResponse returns the created entry with the profile it now belongs to.
type EntryResponse[T any] struct {
	Entry   T                  `json:"entry"`
	Profile domain.UserProfile `json:"profile"`
}

func (h *Handler) getProfile(c *gin.Context) {
	profile, err := h.profiles.GetProfile(c.Request.Context(), profileKey(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, normalizeProfile(*profile))
}

func (h *Handler) saveProfile(c *gin.Context) {
	var req domain.UserProfile
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid profile payload")
		return
	}
	profile, err := h.profiles.SaveProfile(c.Request.Context(), profileKey(c), normalizeProfile(req))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var patch domain.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid profile patch")
		return
	}
	profile, err := h.profiles.UpdateProfile(c.Request.Context(), profileKey(c), patch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, normalizeProfile(*profile))
}

func (h *Handler) resetProfile(c *gin.Context) {
	profile, err := h.profiles.ResetProfile(c.Request.Context(), profileKey(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, normalizeProfile(*profile))
}

func (h *Handler) addCertification(c *gin.Context) {
	var req certificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid certification payload")
		return
	}
	cert, profile, err := h.profiles.AddCertification(c.Request.Context(), profileKey(c), service.CertificationInput{
		Name:   req.Name,
		Issuer: req.Issuer,
		Year:   req.Year,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, EntryResponse[domain.Certification]{Entry: *cert, Profile: normalizeProfile(*profile)})
}

func (h *Handler) addCourse(c *gin.Context) {
	addEntry(h, c, h.profiles.AddCourse)
}

func (h *Handler) addProject(c *gin.Context) {
	addEntry(h, c, h.profiles.AddProject)
}

func (h *Handler) addExperience(c *gin.Context) {
	addEntry(h, c, h.profiles.AddExperience)
}

func (h *Handler) addExam(c *gin.Context) {
	addEntry(h, c, h.profiles.AddExam)
}

func (h *Handler) removeCertification(c *gin.Context) {
	h.removeEntry(c, h.profiles.RemoveCertification)
}

func (h *Handler) removeCourse(c *gin.Context) {
	h.removeEntry(c, h.profiles.RemoveCourse)
}

func (h *Handler) removeProject(c *gin.Context) {
	h.removeEntry(c, h.profiles.RemoveProject)
}

func (h *Handler) removeExperience(c *gin.Context) {
	h.removeEntry(c, h.profiles.RemoveExperience)
}

func (h *Handler) removeExam(c *gin.Context) {
	h.removeEntry(c, h.profiles.RemoveExam)
}

func addEntry[T any](h *Handler, c *gin.Context, add func(ctx context.Context, key string, in T) (*T, *domain.UserProfile, error)) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	entry, profile, err := add(c.Request.Context(), profileKey(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, EntryResponse[T]{Entry: *entry, Profile: normalizeProfile(*profile)})
}

func (h *Handler) removeEntry(c *gin.Context, remove func(ctx context.Context, key, id string) (*domain.UserProfile, error)) {
	profile, err := remove(c.Request.Context(), profileKey(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, normalizeProfile(*profile))
}

// normalizeProfile replaces nil collections with empty ones so clients always see arrays.
func normalizeProfile(p domain.UserProfile) domain.UserProfile {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Certifications == nil {
		p.Certifications = []domain.Certification{}
	}
	if p.Courses == nil {
		p.Courses = []domain.Course{}
	}
	if p.Projects == nil {
		p.Projects = []domain.Project{}
	}
	for i := range p.Projects {
		if p.Projects[i].Technologies == nil {
			p.Projects[i].Technologies = []string{}
		}
	}
	if p.Experience == nil {
		p.Experience = []domain.Experience{}
	}
	if p.Exams == nil {
		p.Exams = []domain.Exam{}
	}
	return p
}
