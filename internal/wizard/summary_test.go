package wizard

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MapleStore/CatalogBot/internal/models"
)

func TestSummarizeProductHidesSentinels(t *testing.T) {
	f := productReadyForPrice()
	f.Price = 150000

	summary := SummarizeProduct(f)
	for _, want := range []string{"Shirt", "Cotton", "Images: 1", "Tops", "Shirts", "M: 5", "L: 3", "150000"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
	if strings.Contains(summary, "Brand:") {
		t.Error("summary shows brand at sentinel value")
	}
	if strings.Contains(summary, "Color:") {
		t.Error("summary shows color at sentinel value")
	}

	f.Brand = "Acme"
	f.ColorName = "Red"
	f.ColorHex = "#FF0000"
	summary = SummarizeProduct(f)
	if !strings.Contains(summary, "Brand: Acme") || !strings.Contains(summary, "Red") {
		t.Errorf("summary missing populated optional fields:\n%s", summary)
	}
}

func TestFormatPrice(t *testing.T) {
	if got := FormatPrice(150000); got != "150000" {
		t.Errorf("FormatPrice(150000) = %q", got)
	}
	if got := FormatPrice(99.5); got != "99.5" {
		t.Errorf("FormatPrice(99.5) = %q", got)
	}
}

type stubCreator struct {
	productID  string
	categoryID string
	err        error
}

func (c *stubCreator) CreateProduct(ctx context.Context, fields models.ProductFields) (string, error) {
	return c.productID, c.err
}

func (c *stubCreator) CreateCategory(ctx context.Context, fields models.CategoryFields) (string, error) {
	return c.categoryID, c.err
}

func TestCommitSurfacesPersistenceFailure(t *testing.T) {
	a := NewAssembler(&stubCreator{err: errors.New("db down")})
	if _, err := a.CommitProduct(context.Background(), productReadyForPrice()); err == nil {
		t.Error("CommitProduct swallowed persistence failure")
	}
	if _, err := a.CommitCategory(context.Background(), models.CategoryFields{Name: "Jackets"}); err == nil {
		t.Error("CommitCategory swallowed persistence failure")
	}

	a = NewAssembler(&stubCreator{productID: "prod-1"})
	id, err := a.CommitProduct(context.Background(), productReadyForPrice())
	if err != nil || id != "prod-1" {
		t.Errorf("CommitProduct = (%s, %v), want (prod-1, nil)", id, err)
	}
}
