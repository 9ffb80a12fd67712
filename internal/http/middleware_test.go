package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"skillbridge/internal/assistant"
	"skillbridge/internal/repository"
	"skillbridge/internal/resume"
	"skillbridge/internal/service"
	"skillbridge/internal/session"
	"skillbridge/internal/storage"
)

func TestIPRateLimiter_PerClientAndSweep(t *testing.T) {
	l := newIPRateLimiter(0.001, 1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.allow("1.1.1.1") || l.allow("1.1.1.1") {
		t.Fatal("expected burst of one for the first client")
	}
	if !l.allow("2.2.2.2") {
		t.Fatal("clients must not share a bucket")
	}

	now = now.Add(time.Hour)
	l.allow("3.3.3.3")
	if _, ok := l.clients["1.1.1.1"]; ok {
		t.Fatal("idle client should have been swept")
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", service.ErrInvalidInput), http.StatusBadRequest},
		{service.ErrNothingToAnalyze, http.StatusBadRequest},
		{assistant.ErrEmptyMessage, http.StatusBadRequest},
		{storage.ErrOutsideArchive, http.StatusBadRequest},
		{storage.ErrInvalidSession, http.StatusBadRequest},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{session.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("course %q: %w", "1", service.ErrNotFound), http.StatusNotFound},
		{service.ErrDashboardUnavailable, http.StatusConflict},
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{resume.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
		{assistant.ErrBusy, http.StatusTooManyRequests},
		{repository.ErrCorruptProfile, 0},
		{errors.New("boom"), 0},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
