package images

import (
	"context"
	"fmt"
	"log/slog"
)

// Processed is the outcome of storing an item image.
type Processed struct {
	Ref      string // Value stored in the item row
	BlurHash string
}

// Processor validates item image uploads and hands them to a Storage backend.
type Processor struct {
	storage  Storage
	maxBytes int
	logger   *slog.Logger
}

// NewProcessor creates a new Processor instance.
func NewProcessor(storage Storage, maxBytes int, logger *slog.Logger) *Processor {
	return &Processor{
		storage:  storage,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Process decodes a data URI, computes its BlurHash and stores it under
// items/{itemID}. An empty dataURI yields an empty result.
// A BlurHash failure is logged and leaves the placeholder empty.
func (p *Processor) Process(ctx context.Context, itemID, dataURI string) (Processed, error) {
	if dataURI == "" {
		return Processed{}, nil
	}

	img, err := DecodeDataURI(dataURI, p.maxBytes)
	if err != nil {
		return Processed{}, err
	}

	hash, err := ComputeBlurHash(img.Data)
	if err != nil {
		p.logger.Warn("failed to compute blurhash",
			"item_id", itemID,
			"format", img.Format,
			"error", err,
		)
	}

	key := fmt.Sprintf("items/%s.%s", itemID, img.Extension())
	ref, err := p.storage.Put(ctx, key, img)
	if err != nil {
		return Processed{}, fmt.Errorf("store image: %w", err)
	}

	p.logger.Debug("stored item image",
		"item_id", itemID,
		"format", img.Format,
		"size", len(img.Data),
		"width", img.Width,
		"height", img.Height,
	)

	return Processed{Ref: ref, BlurHash: hash}, nil
}

// Resolve turns a stored reference into a client-loadable URL.
func (p *Processor) Resolve(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	return p.storage.Resolve(ctx, ref)
}

// Delete removes the stored image behind ref.
func (p *Processor) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	return p.storage.Delete(ctx, ref)
}
