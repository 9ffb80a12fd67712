package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"skillbridge/internal/domain"
)

// Advisor produces the career insights shown on the dashboard.
type Advisor interface {
	AnalyzeResume(ctx context.Context, resumeText string) (*domain.ATSResult, error)
	AnalyzeSkillGap(ctx context.Context, skills []string, targetRole string) (*domain.SkillGapResult, error)
	PredictCareerPaths(ctx context.Context, skills []string) ([]domain.CareerPath, error)
	GenerateRoadmap(ctx context.Context, careerTitle string, currentSkills []string) (*domain.RoadmapData, error)
}

// stubAdvisor answers every question with canned data. Inputs are ignored
// except where they are echoed back into the roadmap text.
type stubAdvisor struct {
	logger logrus.FieldLogger
}

func NewStubAdvisor(logger logrus.FieldLogger) Advisor {
	if logger == nil {
		logger = logrus.New()
	}
	return &stubAdvisor{logger: logger.WithField("component", "advisor")}
}

func (a *stubAdvisor) AnalyzeResume(ctx context.Context, resumeText string) (*domain.ATSResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.logger.WithField("resume_bytes", len(resumeText)).Warn("analyze resume: using stub data")
	return &domain.ATSResult{
		Score:        78,
		KeywordMatch: 72,
		FormattingIssues: []string{
			"Use consistent bullet styles.",
			"Align dates to the right.",
		},
		MissingKeywords: []string{"TypeScript", "CI/CD", "Unit Testing"},
		Suggestions: []string{
			"Add measurable impact for each experience (e.g., 'increased performance by 20%').",
			"Include a dedicated skills section with categorized tools.",
		},
		ParsedData: domain.ParsedResume{
			Skills:     []string{"JavaScript", "React", "Node.js"},
			Experience: []string{"Frontend Developer at Example Corp (2021–Present)."},
			Education:  []string{"BSc in Computer Science"},
		},
	}, nil
}

func (a *stubAdvisor) AnalyzeSkillGap(ctx context.Context, skills []string, targetRole string) (*domain.SkillGapResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.logger.WithFields(logrus.Fields{"skills": len(skills), "role": targetRole}).Warn("analyze skill gap: using stub data")
	return &domain.SkillGapResult{
		RoleFitScore:  63,
		MissingSkills: []string{"Docker", "Kubernetes", "TypeScript"},
		RecommendedCertifications: []string{
			"AWS Certified Cloud Practitioner",
			"Docker Certified Associate",
		},
		RecommendedTools: []string{"Docker", "Kubernetes", "Jest"},
		RecommendedCourses: []string{
			"Docker for Beginners",
			"Kubernetes Fundamentals",
			"TypeScript Complete Guide",
		},
	}, nil
}

func (a *stubAdvisor) PredictCareerPaths(ctx context.Context, skills []string) ([]domain.CareerPath, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.logger.WithField("skills", len(skills)).Warn("predict career paths: using stub data")
	return []domain.CareerPath{
		{
			Title:          "Frontend Developer",
			Difficulty:     domain.DifficultyIntermediate,
			Industries:     []string{"SaaS", "E‑commerce"},
			RequiredSkills: []string{"React", "TypeScript", "REST APIs"},
			CommonCerts:    []string{"Front-End Web Developer Nanodegree"},
		},
		{
			Title:          "Full Stack Developer",
			Difficulty:     domain.DifficultyAdvanced,
			Industries:     []string{"Startups", "Consulting"},
			RequiredSkills: []string{"React", "Node.js", "SQL/NoSQL"},
			CommonCerts:    []string{"Full-Stack Web Developer Certification"},
		},
		{
			Title:          "Cloud Developer",
			Difficulty:     domain.DifficultyAdvanced,
			Industries:     []string{"Cloud", "DevOps"},
			RequiredSkills: []string{"Docker", "CI/CD", "Cloud Provider Basics"},
			CommonCerts:    []string{"AWS Cloud Practitioner", "Azure Fundamentals"},
		},
	}, nil
}

func (a *stubAdvisor) GenerateRoadmap(ctx context.Context, careerTitle string, currentSkills []string) (*domain.RoadmapData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.logger.WithField("role", careerTitle).Warn("generate roadmap: using stub data")

	skills := strings.Join(currentSkills, ", ")
	if skills == "" {
		skills = "N/A"
	}
	return &domain.RoadmapData{
		Title:    fmt.Sprintf("Roadmap to become a %s", careerTitle),
		Overview: fmt.Sprintf("This is an example roadmap for %s based on your current skills: %s.", careerTitle, skills),
		Steps: []domain.RoadmapStep{
			{
				Title:       "Foundation",
				Description: "Strengthen core programming and problem-solving skills.",
				Duration:    "1–2 months",
				Tools:       []string{"JavaScript", "Git", "VS Code"},
			},
			{
				Title:       "Core Stack",
				Description: "Learn main technologies used in the role.",
				Duration:    "2–3 months",
				Tools:       []string{"React", "Node.js", "REST APIs"},
			},
			{
				Title:       "Projects & Portfolio",
				Description: "Build 2–3 real-world style projects and publish them.",
				Duration:    "1–2 months",
				Tools:       []string{"GitHub", "Netlify", "Vercel"},
			},
		},
	}, nil
}
