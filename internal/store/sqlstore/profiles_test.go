package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mymichiganlake/lakes-server/internal/domain"
	"github.com/mymichiganlake/lakes-server/internal/id"
	"github.com/mymichiganlake/lakes-server/internal/store"
)

func TestCreateAndGetProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := makeTestProfile(t, s, "sailor", "Sailor@Example.com")

	got, err := s.GetProfile(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.Email != "sailor@example.com" {
		t.Errorf("Email should be stored lower-cased, got %q", got.Email)
	}
	if got.CreatedAt.Unix() != p.CreatedAt.Unix() {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, p.CreatedAt)
	}

	byEmail, err := s.GetProfileByEmail(ctx, "SAILOR@example.COM")
	if err != nil {
		t.Fatalf("GetProfileByEmail: %v", err)
	}
	if byEmail.ID != p.ID {
		t.Errorf("GetProfileByEmail: got %q, want %q", byEmail.ID, p.ID)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetProfile(context.Background(), id.New())
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateProfile_Duplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestProfile(t, s, "sailor", "sailor@example.com")

	tests := []struct {
		name     string
		username string
		email    string
	}{
		{"duplicate email", "other", "SAILOR@example.com"},
		{"duplicate username", "sailor", "other@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &domain.Profile{ID: id.New(), Username: tt.username, Email: tt.email, CreatedAt: time.Now()}
			err := s.CreateProfile(ctx, p)
			if !errors.Is(err, store.ErrAlreadyExists) {
				t.Errorf("expected ErrAlreadyExists, got %v", err)
			}
		})
	}
}

func TestProfileExistenceChecks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := makeTestProfile(t, s, "sailor", "sailor@example.com")

	checks := []struct {
		name string
		fn   func() (bool, error)
		want bool
	}{
		{"id present", func() (bool, error) { return s.ProfileIDExists(ctx, p.ID) }, true},
		{"id absent", func() (bool, error) { return s.ProfileIDExists(ctx, id.New()) }, false},
		{"username present", func() (bool, error) { return s.UsernameExists(ctx, "sailor") }, true},
		{"username absent", func() (bool, error) { return s.UsernameExists(ctx, "captain") }, false},
		{"email any case", func() (bool, error) { return s.EmailExists(ctx, "Sailor@Example.com") }, true},
		{"email absent", func() (bool, error) { return s.EmailExists(ctx, "nobody@example.com") }, false},
	}

	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			got, err := c.fn()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != c.want {
				t.Errorf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := makeTestProfile(t, s, "sailor", "sailor@example.com")
	makeTestProfile(t, s, "captain", "captain@example.com")

	p.Bio = "Pontoon on Torch Lake"
	if err := s.UpdateProfile(ctx, p); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	got, _ := s.GetProfile(ctx, p.ID)
	if got.Bio != "Pontoon on Torch Lake" {
		t.Errorf("Bio: got %q", got.Bio)
	}

	p.Username = "captain"
	if err := s.UpdateProfile(ctx, p); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists for taken username, got %v", err)
	}

	missing := &domain.Profile{ID: id.New(), Username: "nobody"}
	if err := s.UpdateProfile(ctx, missing); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
