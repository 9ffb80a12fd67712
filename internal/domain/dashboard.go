package domain

import "time"

type ImprovementStep struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type LearningLinkKind string

const (
	LearningLinkCertification LearningLinkKind = "certification"
	LearningLinkCourse        LearningLinkKind = "course"
)

// LearningLink points at a third-party search for a recommended item.
type LearningLink struct {
	Kind  LearningLinkKind `json:"kind"`
	Title string           `json:"title"`
	Label string           `json:"label"`
	URL   string           `json:"url"`
}

type DashboardOverview struct {
	ATS         *ATSResult      `json:"ats,omitempty"`
	SkillGap    *SkillGapResult `json:"skillGap,omitempty"`
	CareerPaths []CareerPath    `json:"careerPaths"`
}

type DashboardDetails struct {
	ImprovementSteps []ImprovementStep `json:"improvementSteps"`
	LearningLinks    []LearningLink    `json:"learningLinks"`
	Summary          string            `json:"summary"`
}

// Dashboard is the read model behind the dashboard's Overview and Details tabs.
type Dashboard struct {
	SessionID   string            `json:"sessionId"`
	TargetRole  string            `json:"targetRole"`
	HasResume   bool              `json:"hasResume"`
	Overview    DashboardOverview `json:"overview"`
	Details     DashboardDetails  `json:"details"`
	GeneratedAt time.Time         `json:"generatedAt"`
}
