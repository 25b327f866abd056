package domain

// Interest is a named tag profiles can attach to themselves.
// Names are unique and stored title-cased: "wake surfing" → "Wake Surfing".
type Interest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
