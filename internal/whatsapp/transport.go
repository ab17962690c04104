package whatsapp

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/MapleStore/CatalogBot/internal/models"
)

// Scheme is the owner-identifier prefix for WhatsApp numbers.
const Scheme = "wa"

// OwnerID builds the scheme-prefixed owner identifier for a phone number.
func OwnerID(number string) string {
	return Scheme + ":" + number
}

func numberFromOwner(owner string) (string, error) {
	number, ok := strings.CutPrefix(owner, Scheme+":")
	if !ok || number == "" {
		return "", fmt.Errorf("owner %q is not a whatsapp identifier", owner)
	}
	return number, nil
}

// Transport implements the messaging transport over WhatsApp. Choices are
// rendered as a numbered list; the operator replies with the number, and
// PayloadForReply maps it back to the choice payload.
type Transport struct {
	sender Sender

	mu      sync.Mutex
	pending map[string]pendingReplies // owner -> latest prompt's reply mapping
}

// pendingReplies is the reply mapping of an owner's newest prompt. The step is
// kept so free-text steps can refuse bare numbers as menu selections.
type pendingReplies struct {
	step    models.Step
	numbers map[int]string
}

// NewTransport creates a Transport on top of a message sender.
func NewTransport(sender Sender) *Transport {
	return &Transport{
		sender:  sender,
		pending: make(map[string]pendingReplies),
	}
}

// SendPrompt renders the prompt with its choices as a numbered list, records
// the number-to-payload mapping, and returns the message ID for retraction.
func (t *Transport) SendPrompt(ctx context.Context, owner string, prompt *models.PromptSpec) (models.PromptRef, error) {
	number, err := numberFromOwner(owner)
	if err != nil {
		return "", err
	}

	body, mapping := RenderPrompt(prompt)
	id, err := t.sender.SendText(ctx, number, body)
	if err != nil {
		slog.Error("WhatsApp SendPrompt failed", "owner", owner, "step", prompt.Step, "error", err)
		return "", fmt.Errorf("failed to send prompt: %w", err)
	}

	// Only the newest prompt's numbers are valid replies.
	t.mu.Lock()
	t.pending[owner] = pendingReplies{step: prompt.Step, numbers: mapping}
	t.mu.Unlock()

	slog.Debug("WhatsApp SendPrompt succeeded", "owner", owner, "step", prompt.Step, "choices", len(mapping))
	return models.PromptRef(id), nil
}

// RetractPrompt revokes a previously sent prompt message.
func (t *Transport) RetractPrompt(ctx context.Context, owner string, ref models.PromptRef) error {
	number, err := numberFromOwner(owner)
	if err != nil {
		return err
	}
	return t.sender.Revoke(ctx, number, string(ref))
}

// Notify sends plain informational text.
func (t *Transport) Notify(ctx context.Context, owner string, text string) error {
	number, err := numberFromOwner(owner)
	if err != nil {
		return err
	}
	if _, err := t.sender.SendText(ctx, number, text); err != nil {
		slog.Error("WhatsApp Notify failed", "owner", owner, "error", err)
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

// PayloadForReply resolves a numeric reply against the owner's latest prompt.
// On steps that expect free text a bare number is the operator's answer, not a
// menu selection, and only the explicit #N form resolves; elsewhere both forms
// do.
func (t *Transport) PayloadForReply(owner string, reply string) (string, bool) {
	trimmed := strings.TrimSpace(reply)
	rest, marked := strings.CutPrefix(trimmed, "#")
	if marked {
		trimmed = strings.TrimSpace(rest)
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return "", false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.pending[owner]
	if !ok {
		return "", false
	}
	if !marked && models.TextEntryStep(p.step) {
		return "", false
	}
	payload, ok := p.numbers[n]
	return payload, ok
}

// ClearPending drops the owner's reply mapping, used when their wizard ends.
func (t *Transport) ClearPending(owner string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, owner)
}

// RenderPrompt formats a prompt as WhatsApp text: the prompt text followed by
// a numbered choice list. It returns the rendered body and the mapping from
// reply number to choice payload.
func RenderPrompt(prompt *models.PromptSpec) (string, map[int]string) {
	mapping := make(map[int]string, len(prompt.Choices))
	if len(prompt.Choices) == 0 {
		return prompt.Text, mapping
	}

	// On free-text steps the numbered form shown is #N, matching the only
	// reply form that selects a choice there.
	marker := ""
	if models.TextEntryStep(prompt.Step) {
		marker = "#"
	}

	var b strings.Builder
	b.WriteString(prompt.Text)
	b.WriteString("\n")
	for i, c := range prompt.Choices {
		n := i + 1
		fmt.Fprintf(&b, "\n%s%d. %s", marker, n, c.Label)
		mapping[n] = c.Payload
	}
	return b.String(), mapping
}
