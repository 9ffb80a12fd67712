package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"skillbridge/internal/domain"
	"skillbridge/internal/resume"
	"skillbridge/internal/session"
)

const (
	DefaultTargetRole = "Full Stack Developer"

	fallbackGapSkill  = "Professional skills"
	fallbackPathSkill = "Problem solving"
)

var (
	// ErrNothingToAnalyze is returned when neither resume text nor skills were supplied.
	ErrNothingToAnalyze = errors.New("please provide resume text or enter skills manually")
	// ErrDashboardUnavailable is returned when a session holds no ATS or skill-gap result.
	ErrDashboardUnavailable = errors.New("no analysis results yet")
)

// TargetRoles lists the roles offered by the analyze form.
var TargetRoles = []string{
	"Frontend Developer",
	"Backend Developer",
	"Full Stack Developer",
	"Cloud Engineer",
	"Data Scientist",
}

// AnalysisInput is what the analyze form submits.
type AnalysisInput struct {
	ResumeText   string
	Resume       *ResumeUpload
	ManualSkills string
	TargetRole   string
}

// ResumeUpload is an uploaded resume file.
type ResumeUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ResumeArchiver stores the raw uploaded file and returns its location.
type ResumeArchiver interface {
	ArchiveResume(ctx context.Context, sessionID, filename, contentType string, data []byte) (string, error)
}

// AnalysisEvents receives analysis notifications, typically metrics.
type AnalysisEvents interface {
	RecordAnalysis(hasResume bool)
	RecordRoadmap(source string)
}

// AnalysisService runs analyses and serves the dashboard built from them.
type AnalysisService interface {
	Run(ctx context.Context, in AnalysisInput) (*domain.AnalysisState, error)
	Get(ctx context.Context, id string) (*domain.AnalysisState, error)
	Dashboard(ctx context.Context, id string) (*domain.Dashboard, error)
	RoadmapForSession(ctx context.Context, id, role string) (*domain.RoadmapData, error)
	Roadmap(ctx context.Context, role string, skills []string) (*domain.RoadmapData, error)
	Report(ctx context.Context, id string) ([]byte, error)
}

type analysisService struct {
	advisor  Advisor
	sessions session.Store
	archive  ResumeArchiver
	events   AnalysisEvents
	logger   logrus.FieldLogger
	now      func() time.Time
}

// NewAnalysisService wires the analysis flow. archive and events may be nil.
func NewAnalysisService(advisor Advisor, sessions session.Store, archive ResumeArchiver, events AnalysisEvents, logger logrus.FieldLogger) AnalysisService {
	if logger == nil {
		logger = logrus.New()
	}
	return &analysisService{
		advisor:  advisor,
		sessions: sessions,
		archive:  archive,
		events:   events,
		logger:   logger.WithField("component", "analysis"),
		now:      time.Now,
	}
}

func (s *analysisService) Run(ctx context.Context, in AnalysisInput) (*domain.AnalysisState, error) {
	id := uuid.NewString()

	resumeText := in.ResumeText
	if in.Resume != nil && len(in.Resume.Data) > 0 {
		text, err := resume.ExtractText(in.Resume.Filename, in.Resume.Data)
		if err != nil {
			return nil, err
		}
		resumeText = text
	}

	if strings.TrimSpace(resumeText) == "" && strings.TrimSpace(in.ManualSkills) == "" {
		return nil, ErrNothingToAnalyze
	}

	targetRole := strings.TrimSpace(in.TargetRole)
	if targetRole == "" {
		targetRole = DefaultTargetRole
	}

	skills := SplitSkills(in.ManualSkills)
	hasResume := strings.TrimSpace(resumeText) != ""

	state := &domain.AnalysisState{
		ID:         id,
		HasResume:  hasResume,
		TargetRole: targetRole,
		Chat:       []domain.ChatMessage{},
		CreatedAt:  s.now().UTC(),
	}

	if hasResume {
		ats, err := s.advisor.AnalyzeResume(ctx, resumeText)
		if err != nil {
			return nil, fmt.Errorf("analyze resume: %w", err)
		}
		state.ATS = ats
		skills = MergeSkills(skills, ats.ParsedData.Skills)
	}

	gapSkills := skills
	if len(gapSkills) == 0 {
		gapSkills = []string{fallbackGapSkill}
	}
	pathSkills := skills
	if len(pathSkills) == 0 {
		pathSkills = []string{fallbackPathSkill}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		gap, err := s.advisor.AnalyzeSkillGap(gctx, gapSkills, targetRole)
		if err != nil {
			return fmt.Errorf("analyze skill gap: %w", err)
		}
		state.SkillGap = gap
		return nil
	})
	g.Go(func() error {
		paths, err := s.advisor.PredictCareerPaths(gctx, pathSkills)
		if err != nil {
			return fmt.Errorf("predict career paths: %w", err)
		}
		state.CareerPaths = paths
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	state.Skills = skills
	if state.Skills == nil {
		state.Skills = []string{}
	}

	if in.Resume != nil && s.archive != nil {
		location, err := s.archive.ArchiveResume(ctx, id, in.Resume.Filename, in.Resume.ContentType, in.Resume.Data)
		if err != nil {
			s.logger.WithError(err).WithField("session", id).Warn("archive resume failed")
		} else {
			state.ResumeLocation = location
		}
	}

	if err := s.sessions.Put(ctx, state); err != nil {
		return nil, fmt.Errorf("store analysis: %w", err)
	}
	if s.events != nil {
		s.events.RecordAnalysis(hasResume)
	}
	s.logger.WithFields(logrus.Fields{
		"session":    id,
		"has_resume": hasResume,
		"skills":     len(skills),
		"role":       targetRole,
	}).Info("analysis completed")
	return state, nil
}

func (s *analysisService) Get(ctx context.Context, id string) (*domain.AnalysisState, error) {
	state, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, fmt.Errorf("analysis %q: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return state, nil
}

func (s *analysisService) Dashboard(ctx context.Context, id string) (*domain.Dashboard, error) {
	state, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !state.DashboardReady() {
		return nil, ErrDashboardUnavailable
	}
	return BuildDashboard(state, s.now()), nil
}

func (s *analysisService) RoadmapForSession(ctx context.Context, id, role string) (*domain.RoadmapData, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, fmt.Errorf("%w: role is required", ErrInvalidInput)
	}
	state, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// the roadmap is seeded with the gaps, not the skills the user already has
	current := []string{}
	if state.SkillGap != nil {
		current = append(current, state.SkillGap.MissingSkills...)
	}
	roadmap, err := s.advisor.GenerateRoadmap(ctx, role, current)
	if err != nil {
		return nil, fmt.Errorf("generate roadmap: %w", err)
	}
	if s.events != nil {
		s.events.RecordRoadmap("session")
	}
	return roadmap, nil
}

func (s *analysisService) Roadmap(ctx context.Context, role string, skills []string) (*domain.RoadmapData, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, fmt.Errorf("%w: role is required", ErrInvalidInput)
	}
	roadmap, err := s.advisor.GenerateRoadmap(ctx, role, MergeSkills(nil, skills))
	if err != nil {
		return nil, fmt.Errorf("generate roadmap: %w", err)
	}
	if s.events != nil {
		s.events.RecordRoadmap("search")
	}
	return roadmap, nil
}

// SplitSkills turns "React, Node.js, ,Go" into [React Node.js Go].
func SplitSkills(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// MergeSkills returns base unchanged, followed by each entry of extra that is
// not already in the list. Comparison is exact, matching how skills are displayed.
func MergeSkills(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	seen := make(map[string]struct{}, len(out)+len(extra))
	for _, s := range base {
		seen[s] = struct{}{}
	}
	for _, s := range extra {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

var improvementSteps = []domain.ImprovementStep{
	{Title: "Optimize ATS Keywords", Description: "Integrate more action verbs and industry-specific tools identified in the Skill Gap Matrix."},
	{Title: "Skill Acquisition Phase", Description: "Prioritize learning the top 3 missing tools identified to improve role fit score."},
	{Title: "Certification Milestone", Description: "Complete at least one of the recommended certifications to validate your expertise to recruiters."},
}

// BuildDashboard projects an analysis state into the dashboard read model.
func BuildDashboard(state *domain.AnalysisState, now time.Time) *domain.Dashboard {
	d := &domain.Dashboard{
		SessionID:   state.ID,
		TargetRole:  state.TargetRole,
		HasResume:   state.HasResume,
		GeneratedAt: now.UTC(),
		Overview: domain.DashboardOverview{
			SkillGap:    state.SkillGap,
			CareerPaths: state.CareerPaths,
		},
		Details: domain.DashboardDetails{
			ImprovementSteps: append([]domain.ImprovementStep(nil), improvementSteps...),
			LearningLinks:    []domain.LearningLink{},
		},
	}
	if d.Overview.CareerPaths == nil {
		d.Overview.CareerPaths = []domain.CareerPath{}
	}
	if state.HasResume {
		d.Overview.ATS = state.ATS
	}

	missing := 0
	if gap := state.SkillGap; gap != nil {
		missing = len(gap.MissingSkills)
		for _, cert := range gap.RecommendedCertifications {
			d.Details.LearningLinks = append(d.Details.LearningLinks, domain.LearningLink{
				Kind:  domain.LearningLinkCertification,
				Title: cert,
				Label: "Start Certification Path",
				URL:   "https://www.coursera.org/search?query=" + escapeComponent(cert),
			})
		}
		for _, course := range gap.RecommendedCourses {
			d.Details.LearningLinks = append(d.Details.LearningLinks, domain.LearningLink{
				Kind:  domain.LearningLinkCourse,
				Title: course,
				Label: "Search Course",
				URL:   "https://www.udemy.com/courses/search/?q=" + escapeComponent(course),
			})
		}
	}

	d.Details.Summary = fmt.Sprintf(
		"In conclusion, your current profile is a strong foundation for your target career path. "+
			"By focusing on the identified %d missing technical competencies "+
			"and optimizing your resume for modern ATS algorithms, you are well-positioned to reach your "+
			"professional goals within the next 6-12 months.", missing)
	return d
}

// QueryEscape leaves a literal '+' as %2B, so any '+' in its output is a space.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// escapeComponent escapes a query value the way browsers' encodeURIComponent does.
func escapeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
