package domain

import "time"

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

type ParsedResume struct {
	Skills     []string `json:"skills"`
	Experience []string `json:"experience"`
	Education  []string `json:"education"`
}

// ATSResult is the applicant-tracking-system score of a resume.
type ATSResult struct {
	Score            int          `json:"score"`
	KeywordMatch     int          `json:"keywordMatch"`
	FormattingIssues []string     `json:"formattingIssues"`
	MissingKeywords  []string     `json:"missingKeywords"`
	Suggestions      []string     `json:"suggestions"`
	ParsedData       ParsedResume `json:"parsedData"`
}

type SkillGapResult struct {
	RoleFitScore              int      `json:"roleFitScore"`
	MissingSkills             []string `json:"missingSkills"`
	RecommendedCertifications []string `json:"recommendedCertifications"`
	RecommendedTools          []string `json:"recommendedTools"`
	RecommendedCourses        []string `json:"recommendedCourses"`
}

type CareerPath struct {
	Title          string     `json:"title"`
	Difficulty     Difficulty `json:"difficulty"`
	Industries     []string   `json:"industries"`
	RequiredSkills []string   `json:"requiredSkills"`
	CommonCerts    []string   `json:"commonCerts"`
}

type RoadmapStep struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    string   `json:"duration"`
	Tools       []string `json:"tools"`
}

type RoadmapData struct {
	Title    string        `json:"title"`
	Overview string        `json:"overview"`
	Steps    []RoadmapStep `json:"steps"`
}

type ChatRole string

const (
	ChatRoleUser ChatRole = "user"
	ChatRoleAI   ChatRole = "ai"
)

type ChatMessage struct {
	Role ChatRole  `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// AnalysisState is the outcome of one analysis run, addressed by ID.
type AnalysisState struct {
	ID              string          `json:"id"`
	ATS             *ATSResult      `json:"ats,omitempty"`
	SkillGap        *SkillGapResult `json:"skillGap,omitempty"`
	CareerPaths     []CareerPath    `json:"careerPaths,omitempty"`
	HasResume       bool            `json:"hasResume"`
	TargetRole      string          `json:"targetRole"`
	Skills          []string        `json:"skills"`
	ResumeLocation  string          `json:"resumeLocation,omitempty"`
	Chat            []ChatMessage   `json:"chat"`
	AssistantTyping bool            `json:"assistantTyping"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// DashboardReady reports whether the dashboard may be shown for this state.
func (s *AnalysisState) DashboardReady() bool {
	return s != nil && (s.ATS != nil || s.SkillGap != nil)
}
