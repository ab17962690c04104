// Package models defines the session and field structures accumulated by wizards.
package models

import "time"

// Sentinel values substituted for skipped optional fields. Downstream
// persistence always receives fully populated records; the sentinel policy
// lives here and is applied inside the transition engine at the moment of skip.
const (
	BrandNotApplicable = "N/A"
	ColorNotApplicable = "N/A"
	ColorHexDefault    = "#000000"
)

// MaxProductImages caps the number of image attachments per product.
const MaxProductImages = 3

// AttachmentRef is an opaque reference to an uploaded image, assigned by the
// transport's upload collaborator. The wizard core never touches image bytes.
type AttachmentRef string

// PromptRef is an opaque reference to a prompt message previously shown to the
// operator, used to edit or retract obsolete prompts on back-navigation.
type PromptRef string

// Size is a product size label offered during the SIZES step.
type Size string

// ProductSizes is the fixed size assortment offered by the product wizard.
var ProductSizes = []Size{"S", "M", "L", "XL", "XXL"}

// ValidSize reports whether s is part of the offered assortment.
func ValidSize(s Size) bool {
	for _, known := range ProductSizes {
		if known == s {
			return true
		}
	}
	return false
}

// SpotlightGroup is a coarse catalog grouping used to narrow category choices.
type SpotlightGroup struct {
	ID   string
	Name string
}

// CategoryRef identifies a selectable category within a spotlight group.
type CategoryRef struct {
	ID   string
	Name string
}

// ProductFields is the partially populated product record a wizard session
// accumulates. Fields are zero until their step completes; optional fields are
// resolved to sentinels on skip so the record handed to persistence is never
// missing a value.
type ProductFields struct {
	Name        string
	Description string
	Brand       string
	ColorName   string
	ColorHex    string

	ImageRefs []AttachmentRef

	SpotlightGroupID   string
	SpotlightGroupName string
	CategoryID         string
	CategoryName       string

	// SizeOrder holds selected sizes in the order they were first toggled on.
	// Quantity re-prompts walk this order, so it must stay deterministic.
	SizeOrder  []Size
	Quantities map[Size]int

	// PendingSize is the size whose quantity is currently being collected.
	PendingSize Size

	Price float64
}

// SizeSelected reports whether s is currently toggled on.
func (f ProductFields) SizeSelected(s Size) bool {
	for _, sel := range f.SizeOrder {
		if sel == s {
			return true
		}
	}
	return false
}

// FirstUnsetSize returns the first selected size without a positive quantity,
// walking selection order. The second return is false when every selected size
// has a quantity, i.e. the QUANTITIES step is complete.
func (f ProductFields) FirstUnsetSize() (Size, bool) {
	for _, s := range f.SizeOrder {
		if f.Quantities[s] <= 0 {
			return s, true
		}
	}
	return "", false
}

// NextPendingSize returns the size whose quantity should be collected next:
// the first selected size without one, falling back to the first selected size
// when every quantity is already set. Empty when no size is selected.
func (f ProductFields) NextPendingSize() Size {
	if s, ok := f.FirstUnsetSize(); ok {
		return s
	}
	if len(f.SizeOrder) > 0 {
		return f.SizeOrder[0]
	}
	return ""
}

// CategoryFields is the record accumulated by the category wizard.
type CategoryFields struct {
	Name               string
	SpotlightGroupID   string
	SpotlightGroupName string
}

// Session is the live, per-operator instance of a wizard: current step plus
// everything accumulated so far. Sessions are ephemeral and in-memory; they are
// replaced whole on every transition and never mutated in place outside the
// session store's per-key critical section.
type Session struct {
	OwnerID string
	Kind    WizardKind
	Step    Step

	Product  ProductFields  // populated when Kind == WizardProduct
	Category CategoryFields // populated when Kind == WizardCategory

	// PromptRefs maps each step to the last prompt message shown for it, so
	// back-navigation can retract or replace obsolete prompts.
	PromptRefs map[Step]PromptRef

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession creates a fresh session positioned at the kind's first step.
func NewSession(ownerID string, kind WizardKind) *Session {
	now := time.Now()
	return &Session{
		OwnerID:    ownerID,
		Kind:       kind,
		Step:       FirstStep(kind),
		PromptRefs: make(map[Step]PromptRef),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone returns a deep copy of the session. The transition engine works on a
// clone and hands the replacement back to the store, keeping the stored value
// immutable outside the per-key lock.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.PromptRefs = make(map[Step]PromptRef, len(s.PromptRefs))
	for k, v := range s.PromptRefs {
		cp.PromptRefs[k] = v
	}
	cp.Product.ImageRefs = append([]AttachmentRef(nil), s.Product.ImageRefs...)
	cp.Product.SizeOrder = append([]Size(nil), s.Product.SizeOrder...)
	cp.Product.Quantities = make(map[Size]int, len(s.Product.Quantities))
	for k, v := range s.Product.Quantities {
		cp.Product.Quantities[k] = v
	}
	return &cp
}
