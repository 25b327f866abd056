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

func TestFindOrCreateCommunity_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.FindOrCreateCommunity(ctx, "Torch Lake")
	if err != nil {
		t.Fatalf("FindOrCreateCommunity: %v", err)
	}
	second, err := s.FindOrCreateCommunity(ctx, "Torch Lake")
	if err != nil {
		t.Fatalf("FindOrCreateCommunity again: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected same community, got %q and %q", first.ID, second.ID)
	}

	all, err := s.ListCommunities(ctx, nil)
	if err != nil {
		t.Fatalf("ListCommunities: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 community, got %d", len(all))
	}
}

func TestCreateCommunity_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := &domain.Community{ID: id.New(), Name: "Gull Lake", LakeName: "Gull", CreatedAt: time.Now()}
	if err := s.CreateCommunity(ctx, c); err != nil {
		t.Fatalf("CreateCommunity: %v", err)
	}

	dup := &domain.Community{ID: id.New(), Name: "Gull Lake", CreatedAt: time.Now()}
	if err := s.CreateCommunity(ctx, dup); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := s.GetCommunity(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCommunity: %v", err)
	}
	if got.LakeName != "Gull" {
		t.Errorf("LakeName: got %q", got.LakeName)
	}
}

func TestListCommunities_FilterByNames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Torch Lake", "Gull Lake", "Houghton Lake"} {
		if _, err := s.FindOrCreateCommunity(ctx, name); err != nil {
			t.Fatalf("FindOrCreateCommunity(%s): %v", name, err)
		}
	}

	got, err := s.ListCommunities(ctx, []string{"Torch Lake", "Houghton Lake", "Nope"})
	if err != nil {
		t.Fatalf("ListCommunities: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 communities, got %d", len(got))
	}
	if got[0].Name != "Houghton Lake" || got[1].Name != "Torch Lake" {
		t.Errorf("expected name order, got %q, %q", got[0].Name, got[1].Name)
	}
}

func TestSetProfileCommunity_Replaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := makeTestProfile(t, s, "sailor", "sailor@example.com")

	if _, err := s.GetProfileCommunity(ctx, p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound before joining, got %v", err)
	}

	torch, _ := s.FindOrCreateCommunity(ctx, "Torch Lake")
	gull, _ := s.FindOrCreateCommunity(ctx, "Gull Lake")

	if err := s.SetProfileCommunity(ctx, p.ID, torch.ID, ""); err != nil {
		t.Fatalf("SetProfileCommunity: %v", err)
	}
	if err := s.SetProfileCommunity(ctx, p.ID, gull.ID, domain.RoleMember); err != nil {
		t.Fatalf("SetProfileCommunity: %v", err)
	}

	got, err := s.GetProfileCommunity(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProfileCommunity: %v", err)
	}
	if got.ID != gull.ID {
		t.Errorf("expected Gull Lake, got %q", got.Name)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM profile_community WHERE profile_id = ?`, p.ID).Scan(&count); err != nil {
		t.Fatalf("count memberships: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 membership, got %d", count)
	}
}

func TestSetProfileCommunity_UnknownCommunity(t *testing.T) {
	s := newTestStore(t)
	p := makeTestProfile(t, s, "sailor", "sailor@example.com")

	err := s.SetProfileCommunity(context.Background(), p.ID, id.New(), domain.RoleMember)
	if !errors.Is(err, store.ErrInvalidReference) {
		t.Errorf("expected ErrInvalidReference, got %v", err)
	}
}
