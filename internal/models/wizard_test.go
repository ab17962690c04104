package models

import "testing"

func TestFirstStep(t *testing.T) {
	if got := FirstStep(WizardProduct); got != StepName {
		t.Errorf("product first step = %s, want %s", got, StepName)
	}
	if got := FirstStep(WizardCategory); got != StepName {
		t.Errorf("category first step = %s, want %s", got, StepName)
	}
}

func TestPredecessorTable(t *testing.T) {
	cases := []struct {
		kind WizardKind
		step Step
		want Step
		ok   bool
	}{
		{WizardProduct, StepName, "", false},
		{WizardProduct, StepDescription, StepName, true},
		{WizardProduct, StepColor, StepBrand, true},
		{WizardProduct, StepMainImage, StepColor, true},
		{WizardProduct, StepAdditionalImages, StepMainImage, true},
		{WizardProduct, StepCategory, StepSpotlightGroup, true},
		{WizardProduct, StepQuantities, StepSizes, true},
		{WizardProduct, StepConfirmation, StepPrice, true},
		{WizardCategory, StepName, "", false},
		{WizardCategory, StepSpotlightGroup, StepName, true},
		{WizardCategory, StepConfirmation, StepSpotlightGroup, true},
		// Steps outside the kind's table have no predecessor.
		{WizardCategory, StepPrice, "", false},
	}
	for _, tc := range cases {
		got, ok := Predecessor(tc.kind, tc.step)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Predecessor(%s, %s) = (%s, %v), want (%s, %v)", tc.kind, tc.step, got, ok, tc.want, tc.ok)
		}
	}
}

// The predecessor table must be the exact inverse of the successor table so
// back-navigation is path independent.
func TestPredecessorInvertsSuccessor(t *testing.T) {
	for _, kind := range AllWizardKinds {
		for _, step := range StepOrder(kind) {
			next, ok := Successor(kind, step)
			if !ok {
				continue
			}
			prev, ok := Predecessor(kind, next)
			if !ok || prev != step {
				t.Errorf("%s: Predecessor(%s) = (%s, %v), want (%s, true)", kind, next, prev, ok, step)
			}
		}
	}
}

func TestIsOptionalStep(t *testing.T) {
	for _, step := range productStepOrder {
		want := step == StepBrand || step == StepColor
		if got := IsOptionalStep(step); got != want {
			t.Errorf("IsOptionalStep(%s) = %v, want %v", step, got, want)
		}
	}
}
