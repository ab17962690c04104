package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/MapleStore/CatalogBot/internal/models"
)

// Directory is the external category-lookup collaborator, consulted when a
// spotlight group is chosen and when category choices are rendered.
type Directory interface {
	SpotlightGroups(ctx context.Context) ([]models.SpotlightGroup, error)
	CategoriesForGroup(ctx context.Context, groupID string) ([]models.CategoryRef, error)
}

// Engine validates inbound events against the current step and computes the
// next session state. It performs no I/O of its own apart from one-shot calls
// to the Directory collaborator; transport formatting and persistence live
// elsewhere. Transition rules are table-driven: one handler per (kind, step).
type Engine struct {
	dir    Directory
	images ImageAccumulator
}

// NewEngine creates a transition engine backed by the given category directory.
func NewEngine(dir Directory) *Engine {
	return &Engine{dir: dir, images: NewImageAccumulator()}
}

// stepFn handles one event at one step. It receives a session clone it may
// mutate freely; the caller stores the returned session as a whole-value
// replacement.
type stepFn func(e *Engine, ctx context.Context, sess *models.Session, ev models.Event) (models.TransitionResult, error)

var productHandlers = map[models.Step]stepFn{
	models.StepName:             handleName,
	models.StepDescription:      handleDescription,
	models.StepBrand:            handleBrand,
	models.StepColor:            handleColor,
	models.StepMainImage:        handleMainImage,
	models.StepAdditionalImages: handleAdditionalImages,
	models.StepSpotlightGroup:   handleProductGroup,
	models.StepCategory:         handleCategory,
	models.StepSizes:            handleSizes,
	models.StepQuantities:       handleQuantities,
	models.StepPrice:            handlePrice,
	models.StepConfirmation:     handleProductConfirmation,
}

var categoryHandlers = map[models.Step]stepFn{
	models.StepName:           handleName,
	models.StepSpotlightGroup: handleCategoryGroup,
	models.StepConfirmation:   handleCategoryConfirmation,
}

// Apply validates one event against the session's current step and returns
// the tagged transition result. The cancel and back controls are legal from
// every non-terminal step and are handled before step dispatch.
func (e *Engine) Apply(ctx context.Context, sess *models.Session, ev models.Event) (models.TransitionResult, error) {
	slog.Debug("Engine apply", "owner", sess.OwnerID, "kind", sess.Kind, "step", sess.Step, "event", fmt.Sprintf("%T", ev))

	if ctrl, ok := ev.(models.ControlInput); ok {
		switch ctrl.Control {
		case models.ControlCancel:
			slog.Info("Engine session cancelled", "owner", sess.OwnerID, "kind", sess.Kind, "step", sess.Step)
			return models.TransitionResult{
				Outcome: models.OutcomeCancelled,
				Reason:  models.CancelByUser,
				Notice:  "Creation cancelled.",
			}, nil
		case models.ControlBack:
			return e.goBack(ctx, sess)
		}
	}

	handlers := productHandlers
	if sess.Kind == models.WizardCategory {
		handlers = categoryHandlers
	}
	h, ok := handlers[sess.Step]
	if !ok {
		return models.TransitionResult{}, fmt.Errorf("no handler for step %s of %s wizard", sess.Step, sess.Kind)
	}
	return h(e, ctx, sess.Clone(), ev)
}

// goBack moves to the unique predecessor of the current step. The predecessor
// comes from the fixed step table, independent of the path taken forward, and
// the prompts of every step after the target are flagged for retraction.
func (e *Engine) goBack(ctx context.Context, sess *models.Session) (models.TransitionResult, error) {
	prev, ok := models.Predecessor(sess.Kind, sess.Step)
	if !ok {
		return e.rejectWith(ctx, sess.Clone(), "Already at the first step.")
	}

	next := sess.Clone()
	from := next.Step
	next.Step = prev
	retract := stepsAfter(next.Kind, prev, from)
	for _, s := range retract {
		delete(next.PromptRefs, s)
	}

	if next.Kind == models.WizardProduct {
		switch prev {
		case models.StepMainImage:
			// Re-entering image collection starts it over; the image being
			// corrected must not survive next to its replacement.
			next.Product.ImageRefs = nil
		case models.StepQuantities:
			// PendingSize was cleared when the step completed; re-entry needs
			// a size to ask about again.
			next.Product.PendingSize = next.Product.NextPendingSize()
		}
	}

	prompt, err := e.PromptFor(ctx, next)
	if err != nil {
		return models.TransitionResult{}, err
	}
	slog.Debug("Engine back navigation", "owner", sess.OwnerID, "kind", sess.Kind, "from", from, "to", prev)
	return models.TransitionResult{
		Outcome: models.OutcomeAdvanced,
		Session: next,
		Prompt:  prompt,
		Retract: retract,
	}, nil
}

// advance moves the session to a new step and builds its prompt.
func (e *Engine) advance(ctx context.Context, sess *models.Session, to models.Step) (models.TransitionResult, error) {
	from := sess.Step
	sess.Step = to
	prompt, err := e.PromptFor(ctx, sess)
	if err != nil {
		return models.TransitionResult{}, err
	}
	slog.Debug("Engine advanced", "owner", sess.OwnerID, "kind", sess.Kind, "from", from, "to", to)
	return models.TransitionResult{Outcome: models.OutcomeAdvanced, Session: sess, Prompt: prompt}, nil
}

// stay accepts the input without changing step; multi-entry steps (image
// accumulation, size toggles, quantity loops) use it to refresh their prompt.
func (e *Engine) stay(ctx context.Context, sess *models.Session) (models.TransitionResult, error) {
	prompt, err := e.PromptFor(ctx, sess)
	if err != nil {
		return models.TransitionResult{}, err
	}
	return models.TransitionResult{Outcome: models.OutcomeAdvanced, Session: sess, Prompt: prompt}, nil
}

// rejectWith declines the input and re-prompts the same step, prefixing the
// canonical prompt with a short reason. Rejections always re-prompt; the
// operator never experiences a silent drop.
func (e *Engine) rejectWith(ctx context.Context, sess *models.Session, reason string) (models.TransitionResult, error) {
	prompt, err := e.PromptFor(ctx, sess)
	if err != nil {
		return models.TransitionResult{}, err
	}
	if reason != "" {
		prompt.Text = reason + "\n\n" + prompt.Text
	}
	slog.Debug("Engine rejected input", "owner", sess.OwnerID, "kind", sess.Kind, "step", sess.Step, "reason", reason)
	return models.TransitionResult{Outcome: models.OutcomeRejected, Session: sess, Prompt: prompt}, nil
}

func handleName(e *Engine, ctx context.Context, sess *models.Session, ev models.Event) (models.TransitionResult, error) {
	text, ok := ev.(models.TextInput)
	if !ok {
		return e.rejectWith(ctx, sess, "Please send the name as text.")
	}
	name := strings.TrimSpace(text.Text)
	if name == "" {
		return e.rejectWith(ctx, sess, "The name cannot be empty.")
	}
	if sess.Kind == models.WizardCategory {
		sess.Category.Name = name
		return e.advance(ctx, sess, models.StepSpotlightGroup)
	}
	sess.Product.Name = name
	return e.advance(ctx, sess, models.StepDescription)
}

func handleDescription(e *Engine, ctx context.Context, sess *models.Session, ev models.Event) (models.TransitionResult, error) {
	text, ok := ev.(models.TextInput)
	if !ok {
		return e.rejectWith(ctx, sess, "Please send the description as text.")
	}
	desc := strings.TrimSpace(text.Text)
	if desc == "" {
		return e.rejectWith(ctx, sess, "The description cannot be empty.")
	}
	sess.Product.Description = desc
	return e.advance(ctx, sess, models.StepBrand)
}

func handleBrand(e *Engine, ctx context.Context, sess *models.Session, ev models.Event) (models.TransitionResult, error) {
	switch in := ev.(type) {
	case models.ControlInput:
		if in.Control == models.ControlSkip {
			// The sentinel is resolved here, at the moment of skip, so
			// persistence never sees an absent optional value.
			sess.Product.Brand = models.BrandNotApplicable
			return e.advance(ctx, sess, models.StepColor)
		}
	case models.TextInput:
		brand := strings.TrimSpace(in.Text)
		if brand == "" {
			return e.rejectWith(ctx, sess, "The brand cannot be blank; send a name or skip.")
		}
		sess.Product.Brand = brand
		return e.advance(ctx, sess, models.StepColor)
	}
	return e.rejectWith(ctx, sess, "Send the brand as text, or skip this step.")
}

func handleColor(e *Engine, ctx context.Context, sess *models.Session, ev models.Event) (models.TransitionResult, error) {
	switch in := ev.(type) {
	case models.ControlInput:
		if in.Control == models.ControlSkip {
			sess.Product.ColorName = models.ColorNotApplicable
			sess.Product.ColorHex = models.ColorHexDefault
			return e.advance(ctx, sess, models.StepMainImage)
		}
	case models.ChoiceInput:
		if color, ok := in.Choice.(models.ColorChoice); ok {
			sess.Product.ColorName = color.Name
			sess.Product.ColorHex = color.Hex
			return e.advance(ctx, sess, models.StepMainImage)
		}
	}
	return e.rejectWith(ctx, sess, "Pick a color from the buttons, or skip this step.")
}

func handleMainImage(e *Engine, ctx context.Context, sess *models.Session, ev models.Event) (models.TransitionResult, error) {
	img, ok := ev.(models.ImageInput)
	if !ok {
		return e.rejectWith(ctx, sess, "Please send a photo of the product.")
	}
	res := e.images.TryAdd(&sess.Product, img.Ref)
	if !res.Accepted {
		return e.rejectWith(ctx, sess, "The image limit has been reached.")
	}
	// The first accepted image always moves on to the additional-images step.
	return e.advance(ctx, sess, models.StepAdditionalImages)
}

func handleAdditionalImages(e *Engine, ctx context.Context, sess *models.Session, ev models.Event) (models.TransitionResult, error) {
	switch in := ev.(type) {
	case models.ImageInput:
		res := e.images.TryAdd(&sess.Product, in.Ref)
		if !res.Accepted {
			return e.rejectWith(ctx, sess, "The image limit has been reached.")
		}
		if res.Remaining == 0 {
			// Reaching the cap advances without an explicit continuation.
			return e.advance(ctx, sess, models.StepSpotlightGroup)
		}
		return e.stay(ctx, sess)
	case models.ControlInput:
		if in.Control == models.ControlDone {
			if len(sess.Product.ImageRefs) == 0 {
				return e.rejectWith(ctx, sess, "At least one image is required.")
			}
			return e.advance(ctx, sess, models.StepSpotlightGroup)
		}
	}
	return e.rejectWith(ctx, sess, "Send another photo, or press Done to continue.")
}

func handleProductGroup(e *Engine, ctx context.Context, sess *models.Session, ev models.Event) (models.TransitionResult, error) {
	choice, ok := ev.(models.ChoiceInput)
	if !ok {
		return e.rejectWith(ctx, sess, "Pick a group from the buttons.")
	}
	group, ok := choice.Choice.(models.GroupChoice)
	if !ok {
		return e.rejectWith(ctx, sess, "Pick a group from the buttons.")
	}

	name, err := e.groupName(ctx, group.ID)
	if err != nil {
		return models.TransitionResult{}, err
	}
	if name == "" {
		return e.rejectWith(ctx, sess, "That group is no longer available.")
	}

	// Entry guard for the CATEGORY step: a group without categories is a
	// designed dead end, detected here rather than leaving the session stuck
	// on an unselectable step.
	cats, err := e.dir.CategoriesForGroup(ctx, group.ID)
	if err != nil {
		return models.TransitionResult{}, fmt.Errorf("category lookup for group %s: %w", group.ID, err)
	}
	if len(cats) == 0 {
		slog.Info("Engine dead end: group has no categories", "owner", sess.OwnerID, "group", group.ID)
		return models.TransitionResult{
			Outcome: models.OutcomeCancelled,
			Reason:  models.CancelDeadEnd,
			Notice:  fmt.Sprintf("There are no categories in %s yet. Product creation cancelled.", name),
		}, nil
	}

	sess.Product.SpotlightGroupID = group.ID
	sess.Product.SpotlightGroupName = name
	return e.advance(ctx, sess, models.StepCategory)
}

func handleCategory(e *Engine, ctx context.Context, sess *models.Session, ev models.Event) (models.TransitionResult, error) {
	choice, ok := ev.(models.ChoiceInput)
	if !ok {
		return e.rejectWith(ctx, sess, "Pick a category from the buttons.")
	}
	cat, ok := choice.Choice.(models.CategoryChoice)
	if !ok {
		return e.rejectWith(ctx, sess, "Pick a category from the buttons.")
	}

	cats, err := e.dir.CategoriesForGroup(ctx, sess.Product.SpotlightGroupID)
	if err != nil {
		return models.TransitionResult{}, fmt.Errorf("category lookup for group %s: %w", sess.Product.SpotlightGroupID, err)
	}
	for _, c := range cats {
		if c.ID == cat.ID {
			sess.Product.CategoryID = c.ID
			sess.Product.CategoryName = c.Name
			return e.advance(ctx, sess, models.StepSizes)
		}
	}
	return e.rejectWith(ctx, sess, "That category is not part of the chosen group.")
}

func handleSizes(e *Engine, ctx context.Context, sess *models.Session, ev models.Event) (models.TransitionResult, error) {
	switch in := ev.(type) {
	case models.ChoiceInput:
		toggle, ok := in.Choice.(models.SizeToggle)
		if !ok {
			return e.rejectWith(ctx, sess, "Toggle sizes with the buttons.")
		}
		if !models.ValidSize(toggle.Size) {
			return e.rejectWith(ctx, sess, fmt.Sprintf("Unknown size %q.", toggle.Size))
		}
		toggleSize(&sess.Product, toggle.Size)
		return e.stay(ctx, sess)
	case models.ControlInput:
		if in.Control == models.ControlDone {
			if len(sess.Product.SizeOrder) == 0 {
				return e.rejectWith(ctx, sess, "Select at least one size before continuing.")
			}
			pending, _ := sess.Product.FirstUnsetSize()
			sess.Product.PendingSize = pending
			return e.advance(ctx, sess, models.StepQuantities)
		}
	}
	return e.rejectWith(ctx, sess, "Toggle sizes with the buttons, then press Done.")
}

// toggleSize flips a size's membership in the selection. Toggling off removes
// the size from the selection order and discards any quantity already set for
// it; quantity data never survives de-selection.
func toggleSize(f *models.ProductFields, size models.Size) {
	for i, sel := range f.SizeOrder {
		if sel == size {
			f.SizeOrder = append(f.SizeOrder[:i], f.SizeOrder[i+1:]...)
			delete(f.Quantities, size)
			return
		}
	}
	f.SizeOrder = append(f.SizeOrder, size)
}

func handleQuantities(e *Engine, ctx context.Context, sess *models.Session, ev models.Event) (models.TransitionResult, error) {
	if sess.Product.PendingSize == "" {
		// A quantity must never be stored under an empty size key.
		sess.Product.PendingSize = sess.Product.NextPendingSize()
	}
	text, ok := ev.(models.TextInput)
	if !ok {
		return e.rejectWith(ctx, sess, fmt.Sprintf("Send the quantity for size %s as a number.", sess.Product.PendingSize))
	}
	n, err := strconv.Atoi(strings.TrimSpace(text.Text))
	if err != nil || n <= 0 {
		// Parse or validation failure re-prompts the same size.
		return e.rejectWith(ctx, sess, fmt.Sprintf("%q is not a valid quantity for size %s; send a positive whole number.", strings.TrimSpace(text.Text), sess.Product.PendingSize))
	}

	if sess.Product.Quantities == nil {
		sess.Product.Quantities = make(map[models.Size]int)
	}
	sess.Product.Quantities[sess.Product.PendingSize] = n

	if next, unset := sess.Product.FirstUnsetSize(); unset {
		// Success moves on to the first still-unset size in selection order.
		sess.Product.PendingSize = next
		return e.stay(ctx, sess)
	}
	sess.Product.PendingSize = ""
	return e.advance(ctx, sess, models.StepPrice)
}

func handlePrice(e *Engine, ctx context.Context, sess *models.Session, ev models.Event) (models.TransitionResult, error) {
	text, ok := ev.(models.TextInput)
	if !ok {
		return e.rejectWith(ctx, sess, "Send the price as a number.")
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(text.Text), 64)
	if err != nil || price <= 0 {
		return e.rejectWith(ctx, sess, fmt.Sprintf("%q is not a valid price; send a positive number.", strings.TrimSpace(text.Text)))
	}
	sess.Product.Price = price
	return e.advance(ctx, sess, models.StepConfirmation)
}

func handleProductConfirmation(e *Engine, ctx context.Context, sess *models.Session, ev models.Event) (models.TransitionResult, error) {
	if ctrl, ok := ev.(models.ControlInput); ok && ctrl.Control == models.ControlConfirm {
		fields := sess.Product
		slog.Info("Engine product wizard completed", "owner", sess.OwnerID, "name", fields.Name)
		return models.TransitionResult{Outcome: models.OutcomeCompleted, Product: &fields}, nil
	}
	return e.rejectWith(ctx, sess, "Press Confirm to save the product, or Cancel to discard it.")
}

func handleCategoryGroup(e *Engine, ctx context.Context, sess *models.Session, ev models.Event) (models.TransitionResult, error) {
	choice, ok := ev.(models.ChoiceInput)
	if !ok {
		return e.rejectWith(ctx, sess, "Pick a group from the buttons.")
	}
	group, ok := choice.Choice.(models.GroupChoice)
	if !ok {
		return e.rejectWith(ctx, sess, "Pick a group from the buttons.")
	}
	name, err := e.groupName(ctx, group.ID)
	if err != nil {
		return models.TransitionResult{}, err
	}
	if name == "" {
		return e.rejectWith(ctx, sess, "That group is no longer available.")
	}
	sess.Category.SpotlightGroupID = group.ID
	sess.Category.SpotlightGroupName = name
	return e.advance(ctx, sess, models.StepConfirmation)
}

func handleCategoryConfirmation(e *Engine, ctx context.Context, sess *models.Session, ev models.Event) (models.TransitionResult, error) {
	if ctrl, ok := ev.(models.ControlInput); ok && ctrl.Control == models.ControlConfirm {
		fields := sess.Category
		slog.Info("Engine category wizard completed", "owner", sess.OwnerID, "name", fields.Name)
		return models.TransitionResult{Outcome: models.OutcomeCompleted, Category: &fields}, nil
	}
	return e.rejectWith(ctx, sess, "Press Confirm to save the category, or Cancel to discard it.")
}

// groupName resolves a spotlight group's display name, returning "" when the
// id is unknown.
func (e *Engine) groupName(ctx context.Context, id string) (string, error) {
	groups, err := e.dir.SpotlightGroups(ctx)
	if err != nil {
		return "", fmt.Errorf("spotlight group lookup: %w", err)
	}
	for _, g := range groups {
		if g.ID == id {
			return g.Name, nil
		}
	}
	return "", nil
}
