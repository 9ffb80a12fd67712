package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"skillbridge/internal/domain"
	"skillbridge/internal/repository"
)

var (
	// ErrInvalidInput indicates a request that fails field validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates the addressed entry or session does not exist.
	ErrNotFound = errors.New("not found")
)

// ProfileService edits the portfolio record stored under a key.
type ProfileService interface {
	GetProfile(ctx context.Context, key string) (*domain.UserProfile, error)
	SaveProfile(ctx context.Context, key string, profile domain.UserProfile) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, key string, patch domain.ProfilePatch) (*domain.UserProfile, error)
	// ResetProfile drops the stored record so the key serves the default profile again.
	ResetProfile(ctx context.Context, key string) (*domain.UserProfile, error)

	AddCertification(ctx context.Context, key string, in CertificationInput) (*domain.Certification, *domain.UserProfile, error)
	RemoveCertification(ctx context.Context, key, id string) (*domain.UserProfile, error)
	AddCourse(ctx context.Context, key string, in domain.Course) (*domain.Course, *domain.UserProfile, error)
	RemoveCourse(ctx context.Context, key, id string) (*domain.UserProfile, error)
	AddProject(ctx context.Context, key string, in domain.Project) (*domain.Project, *domain.UserProfile, error)
	RemoveProject(ctx context.Context, key, id string) (*domain.UserProfile, error)
	AddExperience(ctx context.Context, key string, in domain.Experience) (*domain.Experience, *domain.UserProfile, error)
	RemoveExperience(ctx context.Context, key, id string) (*domain.UserProfile, error)
	AddExam(ctx context.Context, key string, in domain.Exam) (*domain.Exam, *domain.UserProfile, error)
	RemoveExam(ctx context.Context, key, id string) (*domain.UserProfile, error)
}

// CertificationInput is what the "add certificate" form collects.
type CertificationInput struct {
	Name   string
	Issuer string
	Year   string
}

// ProfileEvents receives profile write notifications, typically metrics.
type ProfileEvents interface {
	RecordProfileWrite(op string)
}

type profileService struct {
	profiles repository.ProfileRepository
	events   ProfileEvents
	now      func() time.Time
}

func NewProfileService(profiles repository.ProfileRepository, events ProfileEvents) ProfileService {
	return &profileService{
		profiles: profiles,
		events:   events,
		now:      time.Now,
	}
}

func (s *profileService) GetProfile(ctx context.Context, key string) (*domain.UserProfile, error) {
	stored, err := s.profiles.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		p := domain.DefaultProfile()
		return &p, nil
	}
	return &stored.Profile, nil
}

func (s *profileService) SaveProfile(ctx context.Context, key string, profile domain.UserProfile) (*domain.UserProfile, error) {
	if err := s.profiles.Save(ctx, key, profile); err != nil {
		return nil, err
	}
	s.record("save")
	return &profile, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, key string, patch domain.ProfilePatch) (*domain.UserProfile, error) {
	return s.update(ctx, key, "update", func(p *domain.UserProfile) error {
		patch.Apply(p)
		return nil
	})
}

func (s *profileService) ResetProfile(ctx context.Context, key string) (*domain.UserProfile, error) {
	if err := s.profiles.Delete(ctx, key); err != nil {
		return nil, err
	}
	s.record("reset")
	p := domain.DefaultProfile()
	return &p, nil
}

func (s *profileService) AddCertification(ctx context.Context, key string, in CertificationInput) (*domain.Certification, *domain.UserProfile, error) {
	name := strings.TrimSpace(in.Name)
	issuer := strings.TrimSpace(in.Issuer)
	year := strings.TrimSpace(in.Year)
	if name == "" || issuer == "" || year == "" {
		return nil, nil, fmt.Errorf("%w: please fill in all certification fields", ErrInvalidInput)
	}

	var cert domain.Certification
	profile, err := s.update(ctx, key, "add_certification", func(p *domain.UserProfile) error {
		now := s.now()
		cert = domain.Certification{
			ID:     nextEntryID(now, p.Certifications),
			Name:   name,
			Issuer: issuer,
			Year:   year,
			Date:   now.Format("1/2/2006"),
		}
		p.Certifications = append(p.Certifications, cert)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &cert, profile, nil
}

func (s *profileService) RemoveCertification(ctx context.Context, key, id string) (*domain.UserProfile, error) {
	return s.update(ctx, key, "remove_certification", func(p *domain.UserProfile) error {
		var ok bool
		p.Certifications, ok = removeEntry(p.Certifications, id)
		return entryRemoved(ok, "certification", id)
	})
}

func (s *profileService) AddCourse(ctx context.Context, key string, in domain.Course) (*domain.Course, *domain.UserProfile, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Platform = strings.TrimSpace(in.Platform)
	if in.Name == "" || in.Platform == "" {
		return nil, nil, fmt.Errorf("%w: course name and platform are required", ErrInvalidInput)
	}
	profile, err := s.update(ctx, key, "add_course", func(p *domain.UserProfile) error {
		in.ID = nextEntryID(s.now(), p.Courses)
		p.Courses = append(p.Courses, in)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &in, profile, nil
}

func (s *profileService) RemoveCourse(ctx context.Context, key, id string) (*domain.UserProfile, error) {
	return s.update(ctx, key, "remove_course", func(p *domain.UserProfile) error {
		var ok bool
		p.Courses, ok = removeEntry(p.Courses, id)
		return entryRemoved(ok, "course", id)
	})
}

func (s *profileService) AddProject(ctx context.Context, key string, in domain.Project) (*domain.Project, *domain.UserProfile, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, nil, fmt.Errorf("%w: project name is required", ErrInvalidInput)
	}
	if in.Technologies == nil {
		in.Technologies = []string{}
	}
	profile, err := s.update(ctx, key, "add_project", func(p *domain.UserProfile) error {
		in.ID = nextEntryID(s.now(), p.Projects)
		p.Projects = append(p.Projects, in)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &in, profile, nil
}

func (s *profileService) RemoveProject(ctx context.Context, key, id string) (*domain.UserProfile, error) {
	return s.update(ctx, key, "remove_project", func(p *domain.UserProfile) error {
		var ok bool
		p.Projects, ok = removeEntry(p.Projects, id)
		return entryRemoved(ok, "project", id)
	})
}

func (s *profileService) AddExperience(ctx context.Context, key string, in domain.Experience) (*domain.Experience, *domain.UserProfile, error) {
	in.Role = strings.TrimSpace(in.Role)
	in.Company = strings.TrimSpace(in.Company)
	if in.Role == "" || in.Company == "" {
		return nil, nil, fmt.Errorf("%w: role and company are required", ErrInvalidInput)
	}
	profile, err := s.update(ctx, key, "add_experience", func(p *domain.UserProfile) error {
		in.ID = nextEntryID(s.now(), p.Experience)
		p.Experience = append(p.Experience, in)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &in, profile, nil
}

func (s *profileService) RemoveExperience(ctx context.Context, key, id string) (*domain.UserProfile, error) {
	return s.update(ctx, key, "remove_experience", func(p *domain.UserProfile) error {
		var ok bool
		p.Experience, ok = removeEntry(p.Experience, id)
		return entryRemoved(ok, "experience", id)
	})
}

func (s *profileService) AddExam(ctx context.Context, key string, in domain.Exam) (*domain.Exam, *domain.UserProfile, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, nil, fmt.Errorf("%w: exam name is required", ErrInvalidInput)
	}
	profile, err := s.update(ctx, key, "add_exam", func(p *domain.UserProfile) error {
		in.ID = nextEntryID(s.now(), p.Exams)
		p.Exams = append(p.Exams, in)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &in, profile, nil
}

func (s *profileService) RemoveExam(ctx context.Context, key, id string) (*domain.UserProfile, error) {
	return s.update(ctx, key, "remove_exam", func(p *domain.UserProfile) error {
		var ok bool
		p.Exams, ok = removeEntry(p.Exams, id)
		return entryRemoved(ok, "exam", id)
	})
}

func (s *profileService) update(ctx context.Context, key, op string, fn func(*domain.UserProfile) error) (*domain.UserProfile, error) {
	profile, err := s.profiles.Update(ctx, key, domain.DefaultProfile(), fn)
	if err != nil {
		return nil, err
	}
	s.record(op)
	return profile, nil
}

func (s *profileService) record(op string) {
	if s.events != nil {
		s.events.RecordProfileWrite(op)
	}
}

type entry interface {
	EntryID() string
}

// nextEntryID derives an id from the clock in milliseconds, stepping past ids already taken.
func nextEntryID[T entry](now time.Time, existing []T) string {
	taken := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		taken[e.EntryID()] = struct{}{}
	}
	ms := now.UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if _, ok := taken[id]; !ok {
			return id
		}
		ms++
	}
}

func removeEntry[T entry](entries []T, id string) ([]T, bool) {
	out := make([]T, 0, len(entries))
	removed := false
	for _, e := range entries {
		if e.EntryID() == id {
			removed = true
			continue
		}
		out = append(out, e)
	}
	return out, removed
}

func entryRemoved(ok bool, kind, id string) error {
	if !ok {
		return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
	}
	return nil
}
