package domain

import "time"

// RoleMember is the default role of a profile inside a community.
const RoleMember = "member"

// Community is a named group of profiles, usually gathered around one lake.
type Community struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	LakeName    string    `json:"lake_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Membership links a profile to a community.
type Membership struct {
	ProfileID   string `json:"profile_id"`
	CommunityID string `json:"community_id"`
	Role        string `json:"role"`
}
