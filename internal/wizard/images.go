package wizard

import (
	"log/slog"

	"github.com/MapleStore/CatalogBot/internal/models"
)

// AddResult reports the outcome of attempting to add an image attachment.
type AddResult struct {
	Accepted  bool
	Count     int
	Remaining int
}

// ImageAccumulator enforces the bounded image collection for products:
// at least one image, at most Max. The transition engine consults it before
// touching a session's attachment refs.
type ImageAccumulator struct {
	Max int
}

// NewImageAccumulator returns an accumulator with the product image cap.
func NewImageAccumulator() ImageAccumulator {
	return ImageAccumulator{Max: models.MaxProductImages}
}

// TryAdd appends ref to the product's attachments unless the cap is reached.
// At the cap it rejects without state change; extra images are no-ops, never
// overflow. The fields value must already be a session-local copy.
func (a ImageAccumulator) TryAdd(f *models.ProductFields, ref models.AttachmentRef) AddResult {
	if len(f.ImageRefs) >= a.Max {
		slog.Debug("ImageAccumulator rejected image at cap", "count", len(f.ImageRefs), "max", a.Max)
		return AddResult{Accepted: false, Count: len(f.ImageRefs), Remaining: 0}
	}
	f.ImageRefs = append(f.ImageRefs, ref)
	res := AddResult{Accepted: true, Count: len(f.ImageRefs), Remaining: a.Max - len(f.ImageRefs)}
	slog.Debug("ImageAccumulator accepted image", "count", res.Count, "remaining", res.Remaining)
	return res
}

// Full reports whether the cap has been reached.
func (a ImageAccumulator) Full(f models.ProductFields) bool {
	return len(f.ImageRefs) >= a.Max
}
