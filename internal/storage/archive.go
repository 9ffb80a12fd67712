package storage

import (
	"bytes"
	"context"
	"errors"
	"path"
	"strings"
	"time"
)

var (
	// ErrOutsideArchive is returned for keys that do not live under the archive prefix.
	ErrOutsideArchive = errors.New("key is outside the resume archive")
	// ErrInvalidSession is returned when a session id is blank or could escape its folder.
	ErrInvalidSession = errors.New("a valid session id is required")
)

// ResumeArchive keeps uploaded resumes at <prefix>/<session-id>/<filename>.
type ResumeArchive struct {
	svc       Service
	bucket    string
	keyPrefix string
}

func NewResumeArchive(svc Service, bucket, keyPrefix string) *ResumeArchive {
	return &ResumeArchive{
		svc:       svc,
		bucket:    bucket,
		keyPrefix: strings.Trim(keyPrefix, "/"),
	}
}

func (a *ResumeArchive) ArchiveResume(ctx context.Context, sessionID, filename, contentType string, data []byte) (string, error) {
	if !validSession(sessionID) {
		return "", ErrInvalidSession
	}
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "resume"
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return a.svc.Put(ctx, bytes.NewReader(data), PutOptions{
		Bucket:      a.bucket,
		Key:         a.key(sessionID, name),
		ContentType: contentType,
	})
}

// List returns the files archived for one session.
func (a *ResumeArchive) List(ctx context.Context, sessionID string) ([]ObjectInfo, error) {
	if !validSession(sessionID) {
		return nil, ErrInvalidSession
	}
	objects, err := a.svc.ListObjects(ctx, a.bucket, a.key(sessionID, ""))
	if err != nil {
		return nil, err
	}
	if objects == nil {
		objects = []ObjectInfo{}
	}
	return objects, nil
}

// URL presigns a download link for key.
func (a *ResumeArchive) URL(ctx context.Context, key string, expires time.Duration) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" || strings.Contains(key, "..") {
		return "", ErrOutsideArchive
	}
	if a.keyPrefix != "" && !strings.HasPrefix(key, a.keyPrefix+"/") {
		return "", ErrOutsideArchive
	}
	return a.svc.GetObjectURL(ctx, a.bucket, key, expires)
}

// DeleteSession removes every file archived for sessionID.
func (a *ResumeArchive) DeleteSession(ctx context.Context, sessionID string) error {
	if !validSession(sessionID) {
		return ErrInvalidSession
	}
	return a.svc.DeletePrefix(ctx, a.bucket, a.key(sessionID, ""))
}

func (a *ResumeArchive) key(sessionID, name string) string {
	parts := make([]string, 0, 3)
	if a.keyPrefix != "" {
		parts = append(parts, a.keyPrefix)
	}
	parts = append(parts, sessionID, name)
	return strings.Join(parts, "/")
}

func validSession(id string) bool {
	return strings.TrimSpace(id) != "" && !strings.ContainsAny(id, "/\\") && !strings.Contains(id, "..")
}
