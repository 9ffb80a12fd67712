package domain

import "time"

// DefaultProfileKey is the record key used when callers are not authenticated.
const DefaultProfileKey = "skillbridge_user_profile"

// ProfileSchemaVersion is the version written with every stored profile.
const ProfileSchemaVersion = 1

// UserProfile is the portfolio record edited on the profile page.
type UserProfile struct {
	ID             string          `json:"id"`
	FullName       string          `json:"fullName"`
	Email          string          `json:"email"`
	Age            string          `json:"age,omitempty"`
	Country        string          `json:"country,omitempty"`
	Bio            string          `json:"bio"`
	ProfileImage   string          `json:"profileImage,omitempty"`
	Skills         []string        `json:"skills"`
	Certifications []Certification `json:"certifications"`
	Courses        []Course        `json:"courses"`
	Projects       []Project       `json:"projects"`
	Experience     []Experience    `json:"experience"`
	Exams          []Exam          `json:"exams"`
}

type Certification struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Issuer  string `json:"issuer"`
	Date    string `json:"date"`
	Year    string `json:"year"`
	FileURL string `json:"fileUrl,omitempty"`
}

type Course struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Platform  string `json:"platform"`
	Completed bool   `json:"completed"`
}

type Project struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

type Experience struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

type Exam struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score string `json:"score"`
	Date  string `json:"date"`
}

func (c Certification) EntryID() string { return c.ID }
func (c Course) EntryID() string        { return c.ID }
func (p Project) EntryID() string       { return p.ID }
func (e Experience) EntryID() string    { return e.ID }
func (e Exam) EntryID() string          { return e.ID }

// ProfilePatch carries a shallow update. Nil fields are left untouched;
// non-nil collections replace the stored collection wholesale.
type ProfilePatch struct {
	FullName       *string          `json:"fullName,omitempty"`
	Email          *string          `json:"email,omitempty"`
	Age            *string          `json:"age,omitempty"`
	Country        *string          `json:"country,omitempty"`
	Bio            *string          `json:"bio,omitempty"`
	ProfileImage   *string          `json:"profileImage,omitempty"`
	Skills         *[]string        `json:"skills,omitempty"`
	Certifications *[]Certification `json:"certifications,omitempty"`
	Courses        *[]Course        `json:"courses,omitempty"`
	Projects       *[]Project       `json:"projects,omitempty"`
	Experience     *[]Experience    `json:"experience,omitempty"`
	Exams          *[]Exam          `json:"exams,omitempty"`
}

// Apply merges the patch onto p in place.
func (patch ProfilePatch) Apply(p *UserProfile) {
	if patch.FullName != nil {
		p.FullName = *patch.FullName
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.Age != nil {
		p.Age = *patch.Age
	}
	if patch.Country != nil {
		p.Country = *patch.Country
	}
	if patch.Bio != nil {
		p.Bio = *patch.Bio
	}
	if patch.ProfileImage != nil {
		p.ProfileImage = *patch.ProfileImage
	}
	if patch.Skills != nil {
		p.Skills = *patch.Skills
	}
	if patch.Certifications != nil {
		p.Certifications = *patch.Certifications
	}
	if patch.Courses != nil {
		p.Courses = *patch.Courses
	}
	if patch.Projects != nil {
		p.Projects = *patch.Projects
	}
	if patch.Experience != nil {
		p.Experience = *patch.Experience
	}
	if patch.Exams != nil {
		p.Exams = *patch.Exams
	}
}

// DefaultProfile returns a fresh copy of the profile served for an empty key.
func DefaultProfile() UserProfile {
	return UserProfile{
		ID:             "1",
		FullName:       "Demo User",
		Email:          "demo@skillbridge.ai",
		Age:            "24",
		Country:        "United States",
		Bio:            "Aspiring software engineer with a passion for cloud computing.",
		ProfileImage:   "https://api.dicebear.com/7.x/avataaars/svg?seed=Felix",
		Skills:         []string{"JavaScript", "React", "Node.js"},
		Certifications: []Certification{},
		Courses:        []Course{},
		Projects:       []Project{},
		Experience:     []Experience{},
		Exams:          []Exam{},
	}
}

// StoredProfile is a profile record together with its persistence metadata.
type StoredProfile struct {
	Key           string
	SchemaVersion int
	Profile       UserProfile
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
