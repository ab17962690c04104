// Package models defines the typed inbound events consumed by the transition engine.
package models

// Event is an inbound operator action, already parsed into a typed variant at
// the dispatcher edge. Transport layers never hand raw payload strings to the
// transition engine.
type Event interface {
	isEvent()
}

// TextInput is a free-form text message from the operator.
type TextInput struct {
	Text string
}

// ImageInput carries the opaque reference of an uploaded image.
type ImageInput struct {
	Ref AttachmentRef
}

// ChoiceInput is a structured selection made from a prompt's offered choices.
type ChoiceInput struct {
	Choice Choice
}

// ControlInput is a flow-control action: skip, back, cancel, confirm or the
// "done" continuation used by multi-entry steps.
type ControlInput struct {
	Control Control
}

func (TextInput) isEvent()    {}
func (ImageInput) isEvent()   {}
func (ChoiceInput) isEvent()  {}
func (ControlInput) isEvent() {}

// Control enumerates flow-control actions.
type Control string

// Control constants.
const (
	ControlSkip    Control = "skip"
	ControlBack    Control = "back"
	ControlCancel  Control = "cancel"
	ControlConfirm Control = "confirm"
	// ControlDone requests continuation out of a multi-entry step
	// (additional images, size multi-select).
	ControlDone Control = "done"
)

// Choice is a typed selection decoded from a button payload.
type Choice interface {
	isChoice()
}

// ColorChoice selects a preset color at the COLOR step.
type ColorChoice struct {
	Name string
	Hex  string
}

// SizeToggle toggles a size's membership in the selection at the SIZES step.
type SizeToggle struct {
	Size Size
}

// GroupChoice selects a spotlight category group.
type GroupChoice struct {
	ID string
}

// CategoryChoice selects a category within the chosen spotlight group.
type CategoryChoice struct {
	ID string
}

// SuggestDescription asks the integration layer to generate a description
// draft. It is intercepted by the transport adapter and never reaches the
// transition engine.
type SuggestDescription struct{}

func (ColorChoice) isChoice()        {}
func (SizeToggle) isChoice()         {}
func (GroupChoice) isChoice()        {}
func (CategoryChoice) isChoice()     {}
func (SuggestDescription) isChoice() {}

// PresetColor is a color offered as a button at the COLOR step.
type PresetColor struct {
	Name string
	Hex  string
}

// PresetColors is the fixed palette offered by the product wizard.
var PresetColors = []PresetColor{
	{Name: "Black", Hex: "#000000"},
	{Name: "White", Hex: "#FFFFFF"},
	{Name: "Red", Hex: "#FF0000"},
	{Name: "Blue", Hex: "#0000FF"},
	{Name: "Green", Hex: "#008000"},
	{Name: "Yellow", Hex: "#FFFF00"},
	{Name: "Beige", Hex: "#F5F5DC"},
}
