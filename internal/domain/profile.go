// Package domain defines the core business entities of the MyMichiganLake server.
package domain

import (
	"strings"
	"time"
)

// Profile is the local record of a user. Its ID is shared with the identity
// provider's subject claim and joins the auth domain to the data domain.
type Profile struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"` // Stored lower-cased
	Bio             string    `json:"bio"`
	Address         string    `json:"address"`
	ProfileImageURL string    `json:"profile_image_url"`
	CreatedAt       time.Time `json:"created_at"`
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailLocalPart returns everything before the last '@' of an email.
func EmailLocalPart(email string) string {
	if i := strings.LastIndex(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}

// ProfileUpdate carries the client-writable profile fields.
// Nil pointers leave the stored value untouched.
type ProfileUpdate struct {
	Username        *string
	Bio             *string
	Address         *string
	ProfileImageURL *string
}

// IsEmpty reports whether the update changes no column.
func (u ProfileUpdate) IsEmpty() bool {
	return u.Username == nil && u.Bio == nil && u.Address == nil && u.ProfileImageURL == nil
}

// Apply copies the set fields onto p.
func (u ProfileUpdate) Apply(p *Profile) {
	if u.Username != nil {
		p.Username = *u.Username
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.Address != nil {
		p.Address = *u.Address
	}
	if u.ProfileImageURL != nil {
		p.ProfileImageURL = *u.ProfileImageURL
	}
}
