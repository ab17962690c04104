package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/MapleStore/CatalogBot/internal/models"
)

// Creator is the external persistence collaborator invoked on confirm.
// Implementations live outside the wizard core (see internal/store).
type Creator interface {
	CreateProduct(ctx context.Context, fields models.ProductFields) (string, error)
	CreateCategory(ctx context.Context, fields models.CategoryFields) (string, error)
}

// Assembler renders confirmation summaries and gates the persistence handoff
// behind an explicit confirm.
type Assembler struct {
	creator Creator
}

// NewAssembler creates an Assembler handing confirmed entities to creator.
func NewAssembler(creator Creator) *Assembler {
	return &Assembler{creator: creator}
}

// SummarizeProduct renders the human-readable confirmation summary. Every
// required field and the attachment count appear; optional fields are shown
// only when not at their sentinel value.
func SummarizeProduct(f models.ProductFields) string {
	var b strings.Builder
	b.WriteString("Please review the new product:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", f.Name)
	fmt.Fprintf(&b, "Description: %s\n", f.Description)
	if f.Brand != models.BrandNotApplicable {
		fmt.Fprintf(&b, "Brand: %s\n", f.Brand)
	}
	if f.ColorName != models.ColorNotApplicable {
		fmt.Fprintf(&b, "Color: %s (%s)\n", f.ColorName, f.ColorHex)
	}
	fmt.Fprintf(&b, "Images: %d\n", len(f.ImageRefs))
	fmt.Fprintf(&b, "Group: %s\n", f.SpotlightGroupName)
	fmt.Fprintf(&b, "Category: %s\n", f.CategoryName)

	sizes := make([]string, 0, len(f.SizeOrder))
	for _, s := range f.SizeOrder {
		sizes = append(sizes, fmt.Sprintf("%s: %d", s, f.Quantities[s]))
	}
	fmt.Fprintf(&b, "Sizes: %s\n", strings.Join(sizes, ", "))
	fmt.Fprintf(&b, "Price: %s\n", FormatPrice(f.Price))
	return b.String()
}

// SummarizeCategory renders the category confirmation summary.
func SummarizeCategory(f models.CategoryFields) string {
	var b strings.Builder
	b.WriteString("Please review the new category:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", f.Name)
	fmt.Fprintf(&b, "Group: %s\n", f.SpotlightGroupName)
	return b.String()
}

// FormatPrice renders a price without a trailing zero fraction.
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// CommitProduct hands confirmed product fields to the persistence
// collaborator. On failure the caller must keep the session intact so the
// operator can retry the confirmation without re-entering all fields.
func (a *Assembler) CommitProduct(ctx context.Context, fields models.ProductFields) (string, error) {
	id, err := a.creator.CreateProduct(ctx, fields)
	if err != nil {
		slog.Error("Assembler product handoff failed", "error", err, "name", fields.Name)
		return "", fmt.Errorf("create product: %w", err)
	}
	slog.Info("Assembler product committed", "id", id, "name", fields.Name)
	return id, nil
}

// CommitCategory hands confirmed category fields to the persistence collaborator.
func (a *Assembler) CommitCategory(ctx context.Context, fields models.CategoryFields) (string, error) {
	id, err := a.creator.CreateCategory(ctx, fields)
	if err != nil {
		slog.Error("Assembler category handoff failed", "error", err, "name", fields.Name)
		return "", fmt.Errorf("create category: %w", err)
	}
	slog.Info("Assembler category committed", "id", id, "name", fields.Name)
	return id, nil
}
