package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MapleStore/CatalogBot/internal/models"
	"github.com/MapleStore/CatalogBot/internal/wizard"
)

// Deliver pushes a route result to the operator: retracts obsolete prompts,
// sends notices, and shows the next prompt, recording its reference for later
// retraction. Shared by all transport adapters so the delivery protocol stays
// in one place.
func Deliver(ctx context.Context, t Transport, sessions *wizard.SessionStore, owner string, rr RouteResult) error {
	for _, ref := range rr.RetractRefs {
		if err := t.RetractPrompt(ctx, owner, ref); err != nil {
			// Retraction is best effort: a prompt the platform refuses to
			// remove is stale but harmless.
			slog.Debug("Deliver retraction failed", "owner", owner, "ref", ref, "error", err)
		}
	}

	if rr.Result.Notice != "" {
		if err := t.Notify(ctx, owner, rr.Result.Notice); err != nil {
			return fmt.Errorf("send notice: %w", err)
		}
	}

	if rr.CommitErr != nil {
		slog.Error("Deliver reporting persistence failure", "owner", owner, "error", rr.CommitErr)
		if err := t.Notify(ctx, owner, "⚠️ Saving failed. Press Confirm to try again."); err != nil {
			return fmt.Errorf("send failure notice: %w", err)
		}
		return nil
	}

	if rr.CreatedID != "" {
		label := "product"
		if rr.Kind == models.WizardCategory {
			label = "category"
		}
		if err := t.Notify(ctx, owner, fmt.Sprintf("✅ The %s has been created.", label)); err != nil {
			return fmt.Errorf("send creation notice: %w", err)
		}
	}

	if rr.Result.Prompt != nil {
		ref, err := t.SendPrompt(ctx, owner, rr.Result.Prompt)
		if err != nil {
			return fmt.Errorf("send prompt for step %s: %w", rr.Result.Prompt.Step, err)
		}
		sessions.RecordPromptRef(owner, rr.Kind, rr.Result.Prompt.Step, ref)
	}
	return nil
}

// ExpireSession delivers the implicit-cancel consequences of a janitor expiry:
// prompts are retracted and the operator is told the wizard timed out.
func ExpireSession(ctx context.Context, t Transport, sess *models.Session) {
	for _, ref := range sess.PromptRefs {
		if err := t.RetractPrompt(ctx, sess.OwnerID, ref); err != nil {
			slog.Debug("ExpireSession retraction failed", "owner", sess.OwnerID, "ref", ref, "error", err)
		}
	}
	if err := t.Notify(ctx, sess.OwnerID, "⌛ The wizard timed out and was cancelled."); err != nil {
		slog.Error("ExpireSession notice failed", "owner", sess.OwnerID, "error", err)
	}
}
