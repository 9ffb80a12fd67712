package auth

import (
	"errors"
	"testing"
	"time"

	"skillbridge/internal/domain"
)

func TestTokenService_RoundTrip(t *testing.T) {
	s := NewTokenService("secret", time.Hour)
	token, exp, err := s.Issue(&domain.User{ID: 7, Username: "ada"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if exp.Before(time.Now()) {
		t.Fatalf("expiry %v is in the past", exp)
	}

	claims, err := s.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "ada" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestTokenService_Expired(t *testing.T) {
	s := NewTokenService("secret", time.Minute)
	base := time.Now()
	s.now = func() time.Time { return base }
	token, _, err := s.Issue(&domain.User{ID: 1, Username: "ada"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := s.Parse(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	token, _, err := NewTokenService("one", time.Hour).Issue(&domain.User{ID: 1})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewTokenService("two", time.Hour).Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if _, err := NewTokenService("one", time.Hour).Parse("garbage"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for garbage, got %v", err)
	}
}
