package images

import (
	"bytes"
	"encoding/base64"
	"image"
	"strings"

	domainerrors "github.com/mymichiganlake/lakes-server/internal/errors"
)

// supportedFormats maps image.DecodeConfig format names to MIME types.
var supportedFormats = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// Image is a decoded, validated upload.
type Image struct {
	Data        []byte
	ContentType string
	Format      string // jpeg, png, gif or webp
	Width       int
	Height      int
}

// Extension returns the file extension for the image format.
func (img *Image) Extension() string {
	if img.Format == "jpeg" {
		return "jpg"
	}
	return img.Format
}

// DataURI re-encodes the image as a base64 data URI.
func (img *Image) DataURI() string {
	return "data:" + img.ContentType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// DecodeDataURI parses data:image/<type>;base64,<payload>. The decoded
// payload must not exceed maxBytes and must be a JPEG, PNG, GIF or WebP
// image; the declared type is not trusted.
func DecodeDataURI(uri string, maxBytes int) (*Image, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, domainerrors.Validation("image must be a data URI")
	}

	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, domainerrors.Validation("image must be a data URI")
	}
	mediaType, encoding, _ := strings.Cut(header, ";")
	if !strings.HasPrefix(strings.ToLower(mediaType), "image/") || !strings.EqualFold(encoding, "base64") {
		return nil, domainerrors.Validation("image must be a base64 encoded image data URI")
	}

	// Reject oversized payloads before allocating for them.
	if base64.StdEncoding.DecodedLen(len(payload)) > maxBytes+2 {
		return nil, tooLarge(maxBytes)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, domainerrors.Validation("image payload is not valid base64").WithCause(err)
	}
	if len(data) == 0 {
		return nil, domainerrors.Validation("image payload is empty")
	}
	if len(data) > maxBytes {
		return nil, tooLarge(maxBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, domainerrors.Validation("image could not be decoded").WithCause(err)
	}
	contentType, ok := supportedFormats[format]
	if !ok {
		return nil, domainerrors.Validationf("unsupported image format %q", format)
	}

	return &Image{
		Data:        data,
		ContentType: contentType,
		Format:      format,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

func tooLarge(maxBytes int) error {
	return domainerrors.Validationf("image exceeds maximum size of %d bytes", maxBytes)
}
