package domain

import (
	"strings"
	"time"
)

// PostType classifies a post.
type PostType string

const (
	PostTypeGeneral      PostType = "general"
	PostTypeEvent        PostType = "event"
	PostTypeAnnouncement PostType = "announcement"
)

// ParsePostType maps s case-insensitively onto a PostType.
// Unrecognised input yields PostTypeGeneral and ok=false; callers keep the
// fallback but may log it.
func ParsePostType(s string) (t PostType, ok bool) {
	switch PostType(strings.ToLower(strings.TrimSpace(s))) {
	case PostTypeGeneral:
		return PostTypeGeneral, true
	case PostTypeEvent:
		return PostTypeEvent, true
	case PostTypeAnnouncement:
		return PostTypeAnnouncement, true
	default:
		return PostTypeGeneral, false
	}
}

// Post is a message on the community board.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Type        PostType  `json:"post_type"`
	CreatedAt   time.Time `json:"created_at"`
	AuthorID    string    `json:"author_id"`
	CommunityID *string   `json:"community_id,omitempty"`

	// AuthorUsername is filled on reads; empty when the author no longer exists.
	AuthorUsername string `json:"author_username,omitempty"`
}

// IsOwnedBy reports whether profileID authored the post.
func (p *Post) IsOwnedBy(profileID string) bool {
	return p.AuthorID == profileID
}

// PostFilter narrows post listings.
type PostFilter struct {
	CommunityID string
	Limit       int
}
