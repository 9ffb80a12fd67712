package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

type fakeService struct {
	putFn    func(ctx context.Context, body io.Reader, opts PutOptions) (string, error)
	listFn   func(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	deleteFn func(ctx context.Context, bucket, prefix string) error
	urlFn    func(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}

func (f *fakeService) Put(ctx context.Context, body io.Reader, opts PutOptions) (string, error) {
	return f.putFn(ctx, body, opts)
}

func (f *fakeService) ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	return f.listFn(ctx, bucket, prefix)
}

func (f *fakeService) DeletePrefix(ctx context.Context, bucket, prefix string) error {
	return f.deleteFn(ctx, bucket, prefix)
}

func (f *fakeService) GetObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	return f.urlFn(ctx, bucket, key, expires)
}

func TestResumeArchive_ArchiveResume(t *testing.T) {
	var got PutOptions
	var body []byte
	svc := &fakeService{
		putFn: func(_ context.Context, r io.Reader, opts PutOptions) (string, error) {
			got = opts
			body, _ = io.ReadAll(r)
			return "s3://" + opts.Bucket + "/" + opts.Key, nil
		},
	}
	a := NewResumeArchive(svc, "bucket", "/resumes/")

	loc, err := a.ArchiveResume(context.Background(), "sess-1", `C:\Users\me\cv.pdf`, "", []byte("pdf"))
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if got.Key != "resumes/sess-1/cv.pdf" {
		t.Fatalf("key = %q", got.Key)
	}
	if got.ContentType != "application/octet-stream" {
		t.Fatalf("content type = %q", got.ContentType)
	}
	if string(body) != "pdf" {
		t.Fatalf("body = %q", body)
	}
	if loc != "s3://bucket/resumes/sess-1/cv.pdf" {
		t.Fatalf("location = %q", loc)
	}
}

func TestResumeArchive_ListIsScopedToOneSession(t *testing.T) {
	var prefixes []string
	svc := &fakeService{
		listFn: func(_ context.Context, _ string, prefix string) ([]ObjectInfo, error) {
			prefixes = append(prefixes, prefix)
			return nil, nil
		},
	}
	a := NewResumeArchive(svc, "bucket", "resumes")

	objects, err := a.List(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("list session: %v", err)
	}
	if objects == nil {
		t.Fatal("expected empty, non-nil slice")
	}
	if len(prefixes) != 1 || prefixes[0] != "resumes/sess-1/" {
		t.Fatalf("prefixes = %v", prefixes)
	}

	for _, id := range []string{"", "  ", "../other", "a/b", "a..b"} {
		if _, err := a.List(context.Background(), id); !errors.Is(err, ErrInvalidSession) {
			t.Errorf("List(%q): expected ErrInvalidSession, got %v", id, err)
		}
	}
	if len(prefixes) != 1 {
		t.Fatalf("invalid sessions must not reach storage, prefixes = %v", prefixes)
	}
}

func TestResumeArchive_URLRejectsForeignKeys(t *testing.T) {
	called := false
	svc := &fakeService{
		urlFn: func(context.Context, string, string, time.Duration) (string, error) {
			called = true
			return "https://example.com/signed", nil
		},
	}
	a := NewResumeArchive(svc, "bucket", "resumes")

	for _, key := range []string{"", "other/x.pdf", "resumes/../secret"} {
		if _, err := a.URL(context.Background(), key, time.Minute); !errors.Is(err, ErrOutsideArchive) {
			t.Fatalf("%q: expected ErrOutsideArchive, got %v", key, err)
		}
	}
	if called {
		t.Fatal("presign must not be called for rejected keys")
	}

	url, err := a.URL(context.Background(), "resumes/sess-1/cv.pdf", time.Minute)
	if err != nil || url != "https://example.com/signed" {
		t.Fatalf("url = %q, err = %v", url, err)
	}
}

func TestResumeArchive_DeleteSession(t *testing.T) {
	var prefix string
	svc := &fakeService{
		deleteFn: func(_ context.Context, _ string, p string) error {
			prefix = p
			return nil
		},
	}
	a := NewResumeArchive(svc, "bucket", "")
	if err := a.DeleteSession(context.Background(), "sess-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if prefix != "sess-1/" {
		t.Fatalf("prefix = %q", prefix)
	}
	if err := a.DeleteSession(context.Background(), " "); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for blank session, got %v", err)
	}
}
