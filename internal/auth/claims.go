package auth

import (
	"strings"
)

// Claims is the verified payload of an access token.
type Claims map[string]any

// Subject returns the sub claim, or "" when absent.
func (c Claims) Subject() string {
	sub, _ := c["sub"].(string)
	return sub
}

// Email returns the token's email, read from the top-level email claim or,
// failing that, from user_metadata.email. The result is lower-cased.
func (c Claims) Email() string {
	if email, ok := c["email"].(string); ok && strings.TrimSpace(email) != "" {
		return strings.ToLower(strings.TrimSpace(email))
	}
	if meta, ok := c["user_metadata"].(map[string]any); ok {
		if email, ok := meta["email"].(string); ok {
			return strings.ToLower(strings.TrimSpace(email))
		}
	}
	return ""
}
