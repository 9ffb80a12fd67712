package service

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"skillbridge/internal/domain"
)

// memoryProfiles is an in-process ProfileRepository used by the service tests.
type memoryProfiles struct {
	mu      sync.Mutex
	records map[string]domain.UserProfile
	saveErr error
}

func newMemoryProfiles() *memoryProfiles {
	return &memoryProfiles{records: make(map[string]domain.UserProfile)}
}

func (m *memoryProfiles) Init(context.Context) error { return nil }

func (m *memoryProfiles) Get(_ context.Context, key string) (*domain.StoredProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.records[key]
	if !ok {
		return nil, nil
	}
	return &domain.StoredProfile{Key: key, SchemaVersion: domain.ProfileSchemaVersion, Profile: p}, nil
}

func (m *memoryProfiles) Save(_ context.Context, key string, p domain.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[key] = p
	return nil
}

func (m *memoryProfiles) Update(_ context.Context, key string, base domain.UserProfile, fn func(*domain.UserProfile) error) (*domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.records[key]
	if !ok {
		p = base
	}
	if err := fn(&p); err != nil {
		return nil, err
	}
	m.records[key] = p
	return &p, nil
}

func (m *memoryProfiles) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}

type recordedOps struct {
	ops []string
}

func (r *recordedOps) RecordProfileWrite(op string) { r.ops = append(r.ops, op) }

func newTestProfileService(t *testing.T) (*profileService, *recordedOps) {
	t.Helper()
	events := &recordedOps{}
	svc := NewProfileService(newMemoryProfiles(), events).(*profileService)
	svc.now = func() time.Time { return time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC) }
	return svc, events
}

func TestProfileService_GetReturnsDefaultWhenEmpty(t *testing.T) {
	svc, _ := newTestProfileService(t)

	got, err := svc.GetProfile(context.Background(), domain.DefaultProfileKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if want := domain.DefaultProfile(); !reflect.DeepEqual(*got, want) {
		t.Fatalf("got %+v, want %+v", *got, want)
	}
}

func TestProfileService_UpdateMergesShallowly(t *testing.T) {
	svc, events := newTestProfileService(t)
	ctx := context.Background()

	name := "X"
	got, err := svc.UpdateProfile(ctx, "k", domain.ProfilePatch{FullName: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	want := domain.DefaultProfile()
	want.FullName = "X"
	if !reflect.DeepEqual(*got, want) {
		t.Fatalf("got %+v, want %+v", *got, want)
	}

	reread, err := svc.GetProfile(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(*reread, want) {
		t.Fatalf("reread %+v, want %+v", *reread, want)
	}
	if len(events.ops) != 1 || events.ops[0] != "update" {
		t.Fatalf("events = %v", events.ops)
	}
}

func TestProfileService_SaveThenGet(t *testing.T) {
	svc, _ := newTestProfileService(t)
	ctx := context.Background()

	p := domain.DefaultProfile()
	p.Skills = []string{"Go"}
	p.Exams = []domain.Exam{{ID: "1", Name: "GRE", Score: "330", Date: "2025"}}
	if _, err := svc.SaveProfile(ctx, "k", p); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := svc.GetProfile(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(*got, p) {
		t.Fatalf("got %+v, want %+v", *got, p)
	}
}

func TestProfileService_AddCertification(t *testing.T) {
	svc, _ := newTestProfileService(t)
	ctx := context.Background()

	cert, profile, err := svc.AddCertification(ctx, "k", CertificationInput{Name: " CKA ", Issuer: "CNCF", Year: "2025"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(profile.Certifications) != 1 {
		t.Fatalf("expected one certification, got %d", len(profile.Certifications))
	}
	want := domain.Certification{
		ID:     "1773050400000",
		Name:   "CKA",
		Issuer: "CNCF",
		Year:   "2025",
		Date:   "3/9/2026",
	}
	if *cert != want || profile.Certifications[0] != want {
		t.Fatalf("got %+v, want %+v", *cert, want)
	}

	// same millisecond: the id must not collide
	second, profile, err := svc.AddCertification(ctx, "k", CertificationInput{Name: "CKAD", Issuer: "CNCF", Year: "2025"})
	if err != nil {
		t.Fatalf("add second: %v", err)
	}
	if second.ID == cert.ID {
		t.Fatalf("duplicate id %s", second.ID)
	}
	if len(profile.Certifications) != 2 {
		t.Fatalf("expected two certifications, got %d", len(profile.Certifications))
	}
}

func TestProfileService_AddCertificationRequiresAllFields(t *testing.T) {
	svc, events := newTestProfileService(t)

	cases := []CertificationInput{
		{Issuer: "CNCF", Year: "2025"},
		{Name: "CKA", Year: "2025"},
		{Name: "CKA", Issuer: "  "},
	}
	for _, in := range cases {
		if _, _, err := svc.AddCertification(context.Background(), "k", in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%+v: expected ErrInvalidInput, got %v", in, err)
		}
	}
	if len(events.ops) != 0 {
		t.Fatalf("rejected input must not write: %v", events.ops)
	}
}

func TestProfileService_RemoveCertification(t *testing.T) {
	svc, _ := newTestProfileService(t)
	ctx := context.Background()

	first, _, err := svc.AddCertification(ctx, "k", CertificationInput{Name: "A", Issuer: "I", Year: "1"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	second, _, err := svc.AddCertification(ctx, "k", CertificationInput{Name: "B", Issuer: "I", Year: "2"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	profile, err := svc.RemoveCertification(ctx, "k", first.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(profile.Certifications) != 1 || profile.Certifications[0] != *second {
		t.Fatalf("unexpected certifications %+v", profile.Certifications)
	}

	if _, err := svc.RemoveCertification(ctx, "k", "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProfileService_CollectionValidation(t *testing.T) {
	svc, _ := newTestProfileService(t)
	ctx := context.Background()

	if _, _, err := svc.AddCourse(ctx, "k", domain.Course{Name: "Go"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("course: expected ErrInvalidInput, got %v", err)
	}
	if _, _, err := svc.AddProject(ctx, "k", domain.Project{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("project: expected ErrInvalidInput, got %v", err)
	}
	if _, _, err := svc.AddExperience(ctx, "k", domain.Experience{Role: "Dev"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("experience: expected ErrInvalidInput, got %v", err)
	}
	if _, _, err := svc.AddExam(ctx, "k", domain.Exam{Score: "1"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("exam: expected ErrInvalidInput, got %v", err)
	}
}

func TestProfileService_CollectionsAddAndRemove(t *testing.T) {
	svc, events := newTestProfileService(t)
	ctx := context.Background()

	course, _, err := svc.AddCourse(ctx, "k", domain.Course{Name: "Go", Platform: "Udemy", Completed: true})
	if err != nil {
		t.Fatalf("add course: %v", err)
	}
	project, _, err := svc.AddProject(ctx, "k", domain.Project{Name: "CLI"})
	if err != nil {
		t.Fatalf("add project: %v", err)
	}
	if project.Technologies == nil {
		t.Fatal("technologies must default to an empty list")
	}
	exp, _, err := svc.AddExperience(ctx, "k", domain.Experience{Role: "Dev", Company: "Acme"})
	if err != nil {
		t.Fatalf("add experience: %v", err)
	}
	exam, profile, err := svc.AddExam(ctx, "k", domain.Exam{Name: "GRE"})
	if err != nil {
		t.Fatalf("add exam: %v", err)
	}
	if len(profile.Courses) != 1 || len(profile.Projects) != 1 || len(profile.Experience) != 1 || len(profile.Exams) != 1 {
		t.Fatalf("unexpected profile %+v", profile)
	}

	if _, err := svc.RemoveCourse(ctx, "k", course.ID); err != nil {
		t.Fatalf("remove course: %v", err)
	}
	if _, err := svc.RemoveProject(ctx, "k", project.ID); err != nil {
		t.Fatalf("remove project: %v", err)
	}
	if _, err := svc.RemoveExperience(ctx, "k", exp.ID); err != nil {
		t.Fatalf("remove experience: %v", err)
	}
	profile, err = svc.RemoveExam(ctx, "k", exam.ID)
	if err != nil {
		t.Fatalf("remove exam: %v", err)
	}
	if len(profile.Courses)+len(profile.Projects)+len(profile.Experience)+len(profile.Exams) != 0 {
		t.Fatalf("expected empty collections, got %+v", profile)
	}
	if _, err := svc.RemoveCourse(ctx, "k", course.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second removal, got %v", err)
	}
	if len(events.ops) != 8 {
		t.Fatalf("expected 8 recorded writes, got %v", events.ops)
	}
}

func TestProfileService_SaveError(t *testing.T) {
	repo := newMemoryProfiles()
	repo.saveErr = errors.New("disk full")
	svc := NewProfileService(repo, nil)
	if _, err := svc.SaveProfile(context.Background(), "k", domain.DefaultProfile()); !errors.Is(err, repo.saveErr) {
		t.Fatalf("expected save error, got %v", err)
	}
}

func TestProfileService_ResetRestoresDefault(t *testing.T) {
	svc, events := newTestProfileService(t)
	ctx := context.Background()

	name := "Ada"
	if _, err := svc.UpdateProfile(ctx, "user:1", domain.ProfilePatch{FullName: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, "user:2", domain.ProfilePatch{FullName: &name}); err != nil {
		t.Fatalf("update other: %v", err)
	}

	reset, err := svc.ResetProfile(ctx, "user:1")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if reset.FullName != "Demo User" {
		t.Fatalf("reset returned %q", reset.FullName)
	}
	got, _ := svc.GetProfile(ctx, "user:1")
	if got.FullName != "Demo User" {
		t.Fatalf("after reset fullName = %q", got.FullName)
	}
	other, _ := svc.GetProfile(ctx, "user:2")
	if other.FullName != "Ada" {
		t.Fatalf("reset leaked into another key: %q", other.FullName)
	}
	if last := events.ops[len(events.ops)-1]; last != "reset" {
		t.Fatalf("last op = %q, want reset", last)
	}
}
