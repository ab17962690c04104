package models

import "testing"

func TestFirstUnsetSizeWalksSelectionOrder(t *testing.T) {
	f := ProductFields{
		SizeOrder:  []Size{"L", "M", "S"},
		Quantities: map[Size]int{"L": 4},
	}
	size, ok := f.FirstUnsetSize()
	if !ok || size != "M" {
		t.Errorf("FirstUnsetSize = (%s, %v), want (M, true)", size, ok)
	}

	f.Quantities["M"] = 2
	f.Quantities["S"] = 1
	if _, ok := f.FirstUnsetSize(); ok {
		t.Error("FirstUnsetSize reported unset size after all quantities set")
	}
}

func TestSessionCloneIsDeep(t *testing.T) {
	sess := NewSession("owner-1", WizardProduct)
	sess.Product.SizeOrder = []Size{"M"}
	sess.Product.Quantities = map[Size]int{"M": 5}
	sess.Product.ImageRefs = []AttachmentRef{"img-1"}
	sess.PromptRefs[StepName] = "msg-1"

	cp := sess.Clone()
	cp.Product.Quantities["M"] = 9
	cp.Product.SizeOrder[0] = "L"
	cp.Product.ImageRefs[0] = "img-2"
	cp.PromptRefs[StepName] = "msg-2"

	if sess.Product.Quantities["M"] != 5 {
		t.Error("clone shares quantities map with original")
	}
	if sess.Product.SizeOrder[0] != "M" {
		t.Error("clone shares size order slice with original")
	}
	if sess.Product.ImageRefs[0] != "img-1" {
		t.Error("clone shares image refs slice with original")
	}
	if sess.PromptRefs[StepName] != "msg-1" {
		t.Error("clone shares prompt refs map with original")
	}
}
