package api

// Request body limits. Images arrive base64 encoded inside JSON, so a body
// is about 4/3 of the decoded image size plus the other fields.
const (
	// MaxItemBodyBytes fits one item with an image at the default 2 MiB bound.
	MaxItemBodyBytes = 4 << 20

	// MaxRegisterBodyBytes fits a sign-up with several initial items.
	MaxRegisterBodyBytes = 24 << 20
)
