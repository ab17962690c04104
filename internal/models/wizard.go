// Package models defines the wizard step model shared across CatalogBot components.
//
// It enumerates wizard kinds and their step progressions, and provides the
// forward-order and predecessor tables the transition machinery is built on.
package models

// WizardKind identifies which entity a wizard session is creating.
type WizardKind string

// Wizard kind constants.
const (
	WizardProduct  WizardKind = "product"
	WizardCategory WizardKind = "category"
)

// AllWizardKinds lists every known wizard kind in routing priority order.
var AllWizardKinds = []WizardKind{WizardProduct, WizardCategory}

// Step represents one named stage in a wizard's fixed linear progression.
type Step string

// Step constants. A single namespace covers both wizard kinds; the order
// tables below define which steps belong to which kind.
const (
	StepName             Step = "NAME"
	StepDescription      Step = "DESCRIPTION"
	StepBrand            Step = "BRAND"
	StepColor            Step = "COLOR"
	StepMainImage        Step = "MAIN_IMAGE"
	StepAdditionalImages Step = "ADDITIONAL_IMAGES"
	StepSpotlightGroup   Step = "SPOTLIGHT_CATEGORY_GROUP"
	StepCategory         Step = "CATEGORY"
	StepSizes            Step = "SIZES"
	StepQuantities       Step = "QUANTITIES"
	StepPrice            Step = "PRICE"
	StepConfirmation     Step = "CONFIRMATION"
)

// productStepOrder is the fixed forward order of the product wizard.
var productStepOrder = []Step{
	StepName,
	StepDescription,
	StepBrand,
	StepColor,
	StepMainImage,
	StepAdditionalImages,
	StepSpotlightGroup,
	StepCategory,
	StepSizes,
	StepQuantities,
	StepPrice,
	StepConfirmation,
}

// categoryStepOrder is the fixed forward order of the category wizard.
var categoryStepOrder = []Step{
	StepName,
	StepSpotlightGroup,
	StepConfirmation,
}

// StepOrder returns the fixed forward step order for a wizard kind.
// The returned slice must not be modified.
func StepOrder(kind WizardKind) []Step {
	switch kind {
	case WizardProduct:
		return productStepOrder
	case WizardCategory:
		return categoryStepOrder
	default:
		return nil
	}
}

// FirstStep returns the initial step of a wizard kind.
func FirstStep(kind WizardKind) Step {
	order := StepOrder(kind)
	if len(order) == 0 {
		return ""
	}
	return order[0]
}

// Predecessor returns the unique step immediately preceding the given step in
// the kind's fixed order. It is a pure function of the step table, independent
// of how the session arrived at the step. The second return is false at the
// first step and for steps that do not belong to the kind.
func Predecessor(kind WizardKind, step Step) (Step, bool) {
	order := StepOrder(kind)
	for i, s := range order {
		if s == step {
			if i == 0 {
				return "", false
			}
			return order[i-1], true
		}
	}
	return "", false
}

// Successor returns the step immediately following the given step in the
// kind's fixed order. The second return is false at the final step and for
// steps that do not belong to the kind.
func Successor(kind WizardKind, step Step) (Step, bool) {
	order := StepOrder(kind)
	for i, s := range order {
		if s == step {
			if i == len(order)-1 {
				return "", false
			}
			return order[i+1], true
		}
	}
	return "", false
}

// IsOptionalStep reports whether a step may be skipped with the skip control.
func IsOptionalStep(step Step) bool {
	return step == StepBrand || step == StepColor
}

// TextEntryStep reports whether a step's expected input is free text rather
// than a selection. Text-first transports must not treat a bare number as a
// menu choice on these steps.
func TextEntryStep(step Step) bool {
	switch step {
	case StepName, StepDescription, StepBrand, StepQuantities, StepPrice:
		return true
	}
	return false
}

// ValidStep reports whether step belongs to the given wizard kind.
func ValidStep(kind WizardKind, step Step) bool {
	for _, s := range StepOrder(kind) {
		if s == step {
			return true
		}
	}
	return false
}
