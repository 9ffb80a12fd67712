package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"skillbridge/internal/assistant"
	"skillbridge/internal/resume"
	"skillbridge/internal/service"
)

type analysisRequest struct {
	ResumeText   string `json:"resumeText"`
	ManualSkills string `json:"manualSkills"`
	TargetRole   string `json:"targetRole"`
}

type roadmapRequest struct {
	Role string `json:"role"`
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *Handler) createAnalysis(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	var in service.AnalysisInput
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := h.bindAnalysisForm(c, &in); err != nil {
			h.writeError(c, err)
			return
		}
	} else {
		var req analysisRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				h.writeError(c, err)
				return
			}
			badRequest(c, "invalid analysis payload")
			return
		}
		in = service.AnalysisInput{
			ResumeText:   req.ResumeText,
			ManualSkills: req.ManualSkills,
			TargetRole:   req.TargetRole,
		}
	}

	state, err := h.analyses.Run(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, state)
}

func (h *Handler) bindAnalysisForm(c *gin.Context, in *service.AnalysisInput) error {
	if err := c.Request.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: invalid multipart form", service.ErrInvalidInput)
	}
	in.ResumeText = c.PostForm("resumeText")
	in.ManualSkills = c.PostForm("manualSkills")
	in.TargetRole = c.PostForm("targetRole")

	file, header, err := c.Request.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: invalid resume upload", service.ErrInvalidInput)
	}
	defer file.Close()

	if !resume.IsSupported(header.Filename) {
		return fmt.Errorf("%w: %s", resume.ErrUnsupportedFormat, header.Filename)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read resume upload: %w", err)
	}
	in.Resume = &service.ResumeUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return nil
}

func (h *Handler) getAnalysis(c *gin.Context) {
	state, err := h.analyses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) getDashboard(c *gin.Context) {
	dashboard, err := h.analyses.Dashboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *Handler) sessionRoadmap(c *gin.Context) {
	var req roadmapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid roadmap payload")
		return
	}
	roadmap, err := h.analyses.RoadmapForSession(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, roadmap)
}

func (h *Handler) searchRoadmap(c *gin.Context) {
	roadmap, err := h.analyses.Roadmap(c.Request.Context(), c.Query("role"), service.SplitSkills(c.Query("skills")))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, roadmap)
}

func (h *Handler) getReport(c *gin.Context) {
	body, err := h.analyses.Report(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="skillbridge-report.html"`)
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

func (h *Handler) sendChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid chat payload")
		return
	}
	state, err := h.assistant.Send(c.Request.Context(), c.Param("id"), req.Message)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, assistant.Transcript{
		SessionID: state.ID,
		Messages:  state.Chat,
		Typing:    state.AssistantTyping,
	})
}

func (h *Handler) getChat(c *gin.Context) {
	transcript, err := h.assistant.Transcript(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, transcript)
}
