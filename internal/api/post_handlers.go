package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mymichiganlake/lakes-server/internal/domain"
	"github.com/mymichiganlake/lakes-server/internal/service"
)

func (s *Server) registerPostRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createPost",
		Method:        http.MethodPost,
		Path:          "/posts",
		Summary:       "Create post",
		Description:   "Creates a post authored by the caller. Unknown post types become general.",
		Tags:          []string{"Posts"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreatePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPosts",
		Method:      http.MethodGet,
		Path:        "/posts",
		Summary:     "List posts",
		Description: "Returns the newest posts, optionally for one community",
		Tags:        []string{"Posts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListPosts)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deletePost",
		Method:        http.MethodDelete,
		Path:          "/posts/{id}",
		Summary:       "Delete post",
		Description:   "Deletes a post. Only its author may do so.",
		Tags:          []string{"Posts"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeletePost)
}

// === DTOs ===

// PostResponse contains post data in API responses.
type PostResponse struct {
	ID             string    `json:"id" doc:"Post ID"`
	Title          string    `json:"title" doc:"Title"`
	Content        string    `json:"content" doc:"Body text"`
	PostType       string    `json:"post_type" enum:"general,event,announcement" doc:"Post type"`
	CreatedAt      time.Time `json:"created_at" doc:"Creation time"`
	AuthorID       string    `json:"author_id" doc:"Author profile ID"`
	AuthorUsername string    `json:"author_username" doc:"Author username, or unknown"`
	CommunityID    *string   `json:"community_id,omitempty" doc:"Community the post belongs to"`
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Title       string  `json:"title" minLength:"1" maxLength:"200" doc:"Title"`
	Content     string  `json:"content" minLength:"1" maxLength:"10000" doc:"Body text"`
	PostType    string  `json:"post_type,omitempty" doc:"general, event or announcement (any case)"`
	CommunityID *string `json:"community_id,omitempty" doc:"Community ID"`
}

// CreatePostInput wraps the create post request for Huma.
type CreatePostInput struct {
	Authorization string `header:"Authorization"`
	Body          CreatePostRequest
}

// PostOutput wraps a single post for Huma.
type PostOutput struct {
	Body PostResponse
}

// ListPostsInput contains parameters for listing posts.
type ListPostsInput struct {
	Authorization string `header:"Authorization"`
	CommunityID   string `query:"community_id" doc:"Only posts for this community"`
}

// ListPostsOutput wraps the post list for Huma.
type ListPostsOutput struct {
	Body []PostResponse
}

// DeletePostInput contains parameters for deleting a post.
type DeletePostInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Post ID"`
}

// === Handlers ===

func (s *Server) handleCreatePost(ctx context.Context, input *CreatePostInput) (*PostOutput, error) {
	profile, err := s.requireProfile(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	post, err := s.services.Post.Create(ctx, profile, service.CreatePostRequest{
		Title:       input.Body.Title,
		Content:     input.Body.Content,
		PostType:    input.Body.PostType,
		CommunityID: input.Body.CommunityID,
	})
	if err != nil {
		return nil, err
	}

	return &PostOutput{Body: toPostResponse(post)}, nil
}

func (s *Server) handleListPosts(ctx context.Context, input *ListPostsInput) (*ListPostsOutput, error) {
	if _, err := s.requireProfile(ctx, input.Authorization); err != nil {
		return nil, err
	}

	posts, err := s.services.Post.List(ctx, input.CommunityID)
	if err != nil {
		return nil, err
	}

	resp := make([]PostResponse, len(posts))
	for i, p := range posts {
		resp[i] = toPostResponse(p)
	}
	return &ListPostsOutput{Body: resp}, nil
}

func (s *Server) handleDeletePost(ctx context.Context, input *DeletePostInput) (*struct{}, error) {
	profile, err := s.requireProfile(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Post.Delete(ctx, profile, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func toPostResponse(p *domain.Post) PostResponse {
	return PostResponse{
		ID:             p.ID,
		Title:          p.Title,
		Content:        p.Content,
		PostType:       string(p.Type),
		CreatedAt:      p.CreatedAt,
		AuthorID:       p.AuthorID,
		AuthorUsername: usernameOrUnknown(p.AuthorUsername),
		CommunityID:    p.CommunityID,
	}
}
