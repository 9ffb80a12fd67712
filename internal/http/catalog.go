package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillbridge/internal/service"
)

type NavItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

type FeatureCard struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type CallToAction struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

type CatalogResponse struct {
	Product     string         `json:"product"`
	Headline    string         `json:"headline"`
	Tagline     string         `json:"tagline"`
	Navigation  []NavItem      `json:"navigation"`
	Actions     []CallToAction `json:"actions"`
	Features    []FeatureCard  `json:"features"`
	TargetRoles []string       `json:"targetRoles"`
	DefaultRole string         `json:"defaultRole"`
}

var catalog = CatalogResponse{
	Product:  "SkillBridge",
	Headline: "Bridge the Gap to Your Dream Career",
	Tagline: "AI-powered resume optimization, skill gap analysis, and career roadmapping. " +
		"Upload your resume and unlock your true professional potential today.",
	Navigation: []NavItem{
		{Label: "Home", Path: "/"},
		{Label: "Analyze", Path: "/analyze"},
		{Label: "Dashboard", Path: "/dashboard"},
		{Label: "My Portfolio", Path: "/profile"},
	},
	Actions: []CallToAction{
		{Label: "Analyze My Resume", Path: "/analyze"},
		{Label: "Build Portfolio", Path: "/profile"},
	},
	Features: []FeatureCard{
		{Icon: "📄", Title: "ATS Optimizer", Description: "Get your resume past the bots with our advanced scoring and optimization engine."},
		{Icon: "🎯", Title: "Skill Gap Analysis", Description: "Know exactly which tools and frameworks you're missing for your target job title."},
		{Icon: "🚀", Title: "Career Predictor", Description: "Explore non-obvious career trajectories based on your unique skill composition."},
		{Icon: "💼", Title: "Digital Portfolio", Description: "A central place to store and track your experience, certs, and project results."},
	},
	TargetRoles: service.TargetRoles,
	DefaultRole: service.DefaultTargetRole,
}

func (h *Handler) getCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, catalog)
}
