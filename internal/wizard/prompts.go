package wizard

import (
	"context"
	"fmt"

	"github.com/MapleStore/CatalogBot/internal/models"
)

// Prompt builders produce the canonical prompt for each step: plain text plus
// structured choices carrying stable button payloads. Transports decide how to
// present them (inline keyboards, numbered reply lists).

func (e *Engine) PromptFor(ctx context.Context, sess *models.Session) (*models.PromptSpec, error) {
	switch sess.Kind {
	case models.WizardProduct:
		return e.productPrompt(ctx, sess)
	case models.WizardCategory:
		return e.categoryPrompt(ctx, sess)
	default:
		return nil, fmt.Errorf("unknown wizard kind %q", sess.Kind)
	}
}

func (e *Engine) productPrompt(ctx context.Context, sess *models.Session) (*models.PromptSpec, error) {
	p := &models.PromptSpec{Step: sess.Step}
	f := sess.Product

	switch sess.Step {
	case models.StepName:
		p.Text = "What is the product's name?"
	case models.StepDescription:
		p.Text = "Describe the product."
		p.Choices = append(p.Choices, models.PromptChoice{Label: "✨ Suggest description", Payload: models.SuggestDescriptionPayload()})
	case models.StepBrand:
		p.Text = "What is the brand? You can skip this step."
		p.Choices = append(p.Choices, models.PromptChoice{Label: "⏭ Skip", Payload: models.PayloadSkip})
	case models.StepColor:
		p.Text = "Pick the product's color, or skip this step."
		for _, c := range models.PresetColors {
			p.Choices = append(p.Choices, models.PromptChoice{Label: c.Name, Payload: models.ColorPayload(c.Name, c.Hex)})
		}
		p.Choices = append(p.Choices, models.PromptChoice{Label: "⏭ Skip", Payload: models.PayloadSkip})
	case models.StepMainImage:
		p.Text = "Send the main product photo."
	case models.StepAdditionalImages:
		p.Text = fmt.Sprintf("%d/%d images received. Send more photos, or press Done.", len(f.ImageRefs), e.images.Max)
		p.Choices = append(p.Choices, models.PromptChoice{Label: "✅ Done", Payload: models.PayloadDone})
	case models.StepSpotlightGroup:
		groups, err := e.dir.SpotlightGroups(ctx)
		if err != nil {
			return nil, fmt.Errorf("spotlight group lookup: %w", err)
		}
		p.Text = "Pick a spotlight group."
		for _, g := range groups {
			p.Choices = append(p.Choices, models.PromptChoice{Label: g.Name, Payload: models.GroupPayload(g.ID)})
		}
	case models.StepCategory:
		cats, err := e.dir.CategoriesForGroup(ctx, f.SpotlightGroupID)
		if err != nil {
			return nil, fmt.Errorf("category lookup for group %s: %w", f.SpotlightGroupID, err)
		}
		p.Text = fmt.Sprintf("Pick a category in %s.", f.SpotlightGroupName)
		for _, c := range cats {
			p.Choices = append(p.Choices, models.PromptChoice{Label: c.Name, Payload: models.CategoryPayload(c.ID)})
		}
	case models.StepSizes:
		p.Text = "Toggle the available sizes, then press Done."
		for _, s := range models.ProductSizes {
			label := string(s)
			if f.SizeSelected(s) {
				label = "✓ " + label
			}
			p.Choices = append(p.Choices, models.PromptChoice{Label: label, Payload: models.SizePayload(s)})
		}
		p.Choices = append(p.Choices, models.PromptChoice{Label: "✅ Done", Payload: models.PayloadDone})
	case models.StepQuantities:
		p.Text = fmt.Sprintf("How many items of size %s are in stock?", f.PendingSize)
	case models.StepPrice:
		p.Text = "What is the price?"
	case models.StepConfirmation:
		p.Text = SummarizeProduct(f)
		p.Choices = append(p.Choices, models.PromptChoice{Label: "✅ Confirm", Payload: models.PayloadConfirm})
	default:
		return nil, fmt.Errorf("no product prompt for step %s", sess.Step)
	}

	p.Choices = append(p.Choices, navChoices(sess)...)
	return p, nil
}

func (e *Engine) categoryPrompt(ctx context.Context, sess *models.Session) (*models.PromptSpec, error) {
	p := &models.PromptSpec{Step: sess.Step}

	switch sess.Step {
	case models.StepName:
		p.Text = "What is the category's name?"
	case models.StepSpotlightGroup:
		groups, err := e.dir.SpotlightGroups(ctx)
		if err != nil {
			return nil, fmt.Errorf("spotlight group lookup: %w", err)
		}
		p.Text = "Pick the spotlight group the category belongs to."
		for _, g := range groups {
			p.Choices = append(p.Choices, models.PromptChoice{Label: g.Name, Payload: models.GroupPayload(g.ID)})
		}
	case models.StepConfirmation:
		p.Text = SummarizeCategory(sess.Category)
		p.Choices = append(p.Choices, models.PromptChoice{Label: "✅ Confirm", Payload: models.PayloadConfirm})
	default:
		return nil, fmt.Errorf("no category prompt for step %s", sess.Step)
	}

	p.Choices = append(p.Choices, navChoices(sess)...)
	return p, nil
}

// navChoices builds the navigation controls every prompt carries: Back when a
// predecessor exists, Cancel always.
func navChoices(sess *models.Session) []models.PromptChoice {
	var out []models.PromptChoice
	if _, ok := models.Predecessor(sess.Kind, sess.Step); ok {
		out = append(out, models.PromptChoice{Label: "⬅️ Back", Payload: models.PayloadBack})
	}
	out = append(out, models.PromptChoice{Label: "❌ Cancel", Payload: models.PayloadCancel})
	return out
}
