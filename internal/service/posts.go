package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mymichiganlake/lakes-server/internal/domain"
	domainerrors "github.com/mymichiganlake/lakes-server/internal/errors"
	"github.com/mymichiganlake/lakes-server/internal/id"
	"github.com/mymichiganlake/lakes-server/internal/store"
	"github.com/mymichiganlake/lakes-server/internal/validation"
)

// PostListLimit caps how many posts a listing returns.
const PostListLimit = 100

// CreatePostRequest is the input for a new post.
type CreatePostRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Content     string  `json:"content" validate:"required,max=10000"`
	PostType    string  `json:"post_type,omitempty" validate:"max=32"`
	CommunityID *string `json:"community_id,omitempty" validate:"omitempty,uuid"`
}

// PostService handles community board posts.
type PostService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewPostService creates a new post service.
func NewPostService(store store.Store, validator *validation.Validator, logger *slog.Logger) *PostService {
	return &PostService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// Create stores a post authored by author.
func (s *PostService) Create(ctx context.Context, author *domain.Profile, req CreatePostRequest) (*domain.Post, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	postType, ok := domain.ParsePostType(req.PostType)
	if !ok && strings.TrimSpace(req.PostType) != "" {
		s.logger.Info("Unrecognized post type, using default",
			"post_type", req.PostType,
			"default", postType,
		)
	}

	var communityID *string
	if req.CommunityID != nil && *req.CommunityID != "" {
		if _, err := s.store.GetCommunity(ctx, *req.CommunityID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, domainerrors.NotFound("Community not found")
			}
			return nil, err
		}
		communityID = req.CommunityID
	}

	post := &domain.Post{
		ID:             id.New(),
		Title:          req.Title,
		Content:        req.Content,
		Type:           postType,
		CreatedAt:      time.Now().UTC(),
		AuthorID:       author.ID,
		CommunityID:    communityID,
		AuthorUsername: author.Username,
	}

	if err := s.store.CreatePost(ctx, post); err != nil {
		if errors.Is(err, store.ErrInvalidReference) {
			return nil, domainerrors.Validation("invalid community_id").WithCause(err)
		}
		return nil, err
	}

	s.logger.Info("Post created", "post_id", post.ID, "author_id", author.ID, "post_type", post.Type)
	return post, nil
}

// List returns the newest posts, optionally for one community.
func (s *PostService) List(ctx context.Context, communityID string) ([]*domain.Post, error) {
	if communityID != "" && !id.Valid(communityID) {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"community_id": "must be a valid UUID",
		})
	}
	return s.store.ListPosts(ctx, domain.PostFilter{
		CommunityID: communityID,
		Limit:       PostListLimit,
	})
}

// Delete removes a post. Only its author may do so.
func (s *PostService) Delete(ctx context.Context, actor *domain.Profile, postID string) error {
	if !id.Valid(postID) {
		return domainerrors.Validation("invalid post id")
	}

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("Post not found")
		}
		return err
	}
	if !post.IsOwnedBy(actor.ID) {
		return domainerrors.Forbidden("Not your post")
	}

	if err := s.store.DeletePost(ctx, postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("Post not found")
		}
		return err
	}

	s.logger.Info("Post deleted", "post_id", postID, "author_id", actor.ID)
	return nil
}
