package wizard

import (
	"testing"

	"github.com/MapleStore/CatalogBot/internal/models"
)

// Full product creation drive-through: start to confirm, exercising skips,
// the continuation control at the image stage, the group/category lookups,
// the quantity loop and the price step.
func TestProductWizardEndToEnd(t *testing.T) {
	e := testEngine()
	sess := models.NewSession("op", models.WizardProduct)

	steps := []struct {
		ev       models.Event
		wantStep models.Step
	}{
		{models.TextInput{Text: "Shirt"}, models.StepDescription},
		{models.TextInput{Text: "Cotton"}, models.StepBrand},
		{models.ControlInput{Control: models.ControlSkip}, models.StepColor},
		{models.ControlInput{Control: models.ControlSkip}, models.StepMainImage},
		{models.ImageInput{Ref: "img-1"}, models.StepAdditionalImages},
		{models.ControlInput{Control: models.ControlDone}, models.StepSpotlightGroup},
		{models.ChoiceInput{Choice: models.GroupChoice{ID: "grp-tops"}}, models.StepCategory},
		{models.ChoiceInput{Choice: models.CategoryChoice{ID: "cat-shirts"}}, models.StepSizes},
		{models.ChoiceInput{Choice: models.SizeToggle{Size: "M"}}, models.StepSizes},
		{models.ChoiceInput{Choice: models.SizeToggle{Size: "L"}}, models.StepSizes},
		{models.ControlInput{Control: models.ControlDone}, models.StepQuantities},
		{models.TextInput{Text: "5"}, models.StepQuantities},
		{models.TextInput{Text: "3"}, models.StepPrice},
		{models.TextInput{Text: "150000"}, models.StepConfirmation},
	}
	for _, st := range steps {
		sess = mustAdvance(t, e, sess, st.ev)
		if sess.Step != st.wantStep {
			t.Fatalf("after %#v: step = %s, want %s", st.ev, sess.Step, st.wantStep)
		}
	}

	res := apply(t, e, sess, models.ControlInput{Control: models.ControlConfirm})
	if res.Outcome != models.OutcomeCompleted {
		t.Fatalf("confirm: outcome = %s, want completed", res.Outcome)
	}

	f := res.Product
	if f.Name != "Shirt" || f.Description != "Cotton" {
		t.Errorf("name/description = %q/%q", f.Name, f.Description)
	}
	if f.Brand != models.BrandNotApplicable {
		t.Errorf("brand = %q, want sentinel", f.Brand)
	}
	if f.ColorName != models.ColorNotApplicable || f.ColorHex != models.ColorHexDefault {
		t.Errorf("color = %q/%q, want sentinels", f.ColorName, f.ColorHex)
	}
	if len(f.ImageRefs) != 1 {
		t.Errorf("image count = %d, want 1", len(f.ImageRefs))
	}
	if f.Quantities["M"] != 5 || f.Quantities["L"] != 3 {
		t.Errorf("quantities = %v, want M:5 L:3", f.Quantities)
	}
	if f.Price != 150000 {
		t.Errorf("price = %v, want 150000", f.Price)
	}
	if f.CategoryName != "Shirts" || f.SpotlightGroupName != "Tops" {
		t.Errorf("category/group = %q/%q", f.CategoryName, f.SpotlightGroupName)
	}
}

// Same flow, but the chosen spotlight group has no categories: the session is
// cancelled with a notice before the CATEGORY step is ever entered.
func TestProductWizardDeadEndsOnEmptyGroup(t *testing.T) {
	e := testEngine()
	sess := models.NewSession("op", models.WizardProduct)

	for _, ev := range []models.Event{
		models.TextInput{Text: "Shirt"},
		models.TextInput{Text: "Cotton"},
		models.ControlInput{Control: models.ControlSkip},
		models.ControlInput{Control: models.ControlSkip},
		models.ImageInput{Ref: "img-1"},
		models.ControlInput{Control: models.ControlDone},
	} {
		sess = mustAdvance(t, e, sess, ev)
	}
	if sess.Step != models.StepSpotlightGroup {
		t.Fatalf("step = %s, want SPOTLIGHT_CATEGORY_GROUP", sess.Step)
	}

	res := apply(t, e, sess, models.ChoiceInput{Choice: models.GroupChoice{ID: "grp-empty"}})
	if res.Outcome != models.OutcomeCancelled || res.Reason != models.CancelDeadEnd {
		t.Fatalf("outcome = %s/%s, want cancelled/dead_end", res.Outcome, res.Reason)
	}
}

// Back-navigation lands on the table predecessor regardless of the path taken
// forward: arriving at MAIN_IMAGE via skips or via typed values makes no
// difference to where back goes.
func TestBackIsPathIndependent(t *testing.T) {
	e := testEngine()

	viaSkip := models.NewSession("op-a", models.WizardProduct)
	for _, ev := range []models.Event{
		models.TextInput{Text: "Shirt"},
		models.TextInput{Text: "Cotton"},
		models.ControlInput{Control: models.ControlSkip},
		models.ControlInput{Control: models.ControlSkip},
	} {
		viaSkip = mustAdvance(t, e, viaSkip, ev)
	}

	viaInput := models.NewSession("op-b", models.WizardProduct)
	for _, ev := range []models.Event{
		models.TextInput{Text: "Shirt"},
		models.TextInput{Text: "Cotton"},
		models.TextInput{Text: "Acme"},
		models.ChoiceInput{Choice: models.ColorChoice{Name: "Red", Hex: "#FF0000"}},
	} {
		viaInput = mustAdvance(t, e, viaInput, ev)
	}

	for _, sess := range []*models.Session{viaSkip, viaInput} {
		if sess.Step != models.StepMainImage {
			t.Fatalf("setup: step = %s, want MAIN_IMAGE", sess.Step)
		}
		res := apply(t, e, sess, models.ControlInput{Control: models.ControlBack})
		if res.Session.Step != models.StepColor {
			t.Errorf("back from MAIN_IMAGE: step = %s, want COLOR", res.Session.Step)
		}
	}
}
