package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mymichiganlake/lakes-server/internal/domain"
	"github.com/mymichiganlake/lakes-server/internal/id"
	"github.com/mymichiganlake/lakes-server/internal/identity"
	"github.com/mymichiganlake/lakes-server/internal/media/images"
	"github.com/mymichiganlake/lakes-server/internal/store/sqlstore"
	"github.com/mymichiganlake/lakes-server/internal/validation"
)

// testImageURI renders a small PNG as a data URI.
func testImageURI(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := range 8 {
		for y := range 8 {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := sqlstore.Open(context.Background(), dbPath, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

type testServices struct {
	store       *sqlstore.Store
	profiles    *ProfileService
	posts       *PostService
	items       *ItemService
	interests   *InterestService
	communities *CommunityService
	register    *RegistrationService
	identity    *fakeIdentity
}

func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	s := setupTestStore(t)
	logger := discardLogger()
	v := validation.New()
	processor := images.NewProcessor(images.InlineStorage{}, 2<<20, logger)
	fake := newFakeIdentity()

	profiles := NewProfileService(s, v, logger)
	items := NewItemService(s, processor, v, logger)

	return &testServices{
		store:       s,
		profiles:    profiles,
		posts:       NewPostService(s, v, logger),
		items:       items,
		interests:   NewInterestService(s, logger),
		communities: NewCommunityService(s, logger),
		register:    NewRegistrationService(s, fake, profiles, items, v, logger),
		identity:    fake,
	}
}

func createTestProfile(t *testing.T, ts *testServices, username string) *domain.Profile {
	t.Helper()
	p := &domain.Profile{
		ID:        id.New(),
		Username:  username,
		Email:     username + "@example.com",
		CreatedAt: time.Now(),
	}
	require.NoError(t, ts.store.CreateProfile(context.Background(), p))
	return p
}

// fakeIdentity records admin calls in memory.
type fakeIdentity struct {
	mu        sync.Mutex
	users     map[string]string // id -> email
	deleted   []string
	createErr error
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{users: make(map[string]string)}
}

func (f *fakeIdentity) CreateUser(_ context.Context, p identity.CreateUserParams) (*identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	u := &identity.User{ID: id.New(), Email: p.Email}
	f.users[u.ID] = u.Email
	return u, nil
}

func (f *fakeIdentity) DeleteUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, userID)
	f.deleted = append(f.deleted, userID)
	return nil
}

func (f *fakeIdentity) userCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}
