package whatsapp

import (
	"context"
	"log/slog"
	"strings"

	"go.mau.fi/whatsmeow/types/events"

	"github.com/MapleStore/CatalogBot/internal/messaging"
	"github.com/MapleStore/CatalogBot/internal/models"
)

const helpText = "Commands:\n" +
	"/newproduct - create a product step by step\n" +
	"/newcategory - create a category\n" +
	"/cancel - abandon the wizard in progress\n\n" +
	"Reply with a choice number (use #1 when the step asks you to type an answer), or with skip, back, cancel, confirm, done."

// Suggester drafts a product description from the product name.
type Suggester interface {
	SuggestDescription(ctx context.Context, productName string) (string, error)
}

// Receiver translates inbound WhatsApp events into wizard events and routes
// them through the dispatcher.
type Receiver struct {
	client     *Client
	transport  *Transport
	dispatcher *messaging.Dispatcher
	suggester  Suggester
}

// NewReceiver creates a Receiver. The suggester may be nil, which disables
// description suggestions on this transport.
func NewReceiver(client *Client, transport *Transport, dispatcher *messaging.Dispatcher, suggester Suggester) *Receiver {
	return &Receiver{
		client:     client,
		transport:  transport,
		dispatcher: dispatcher,
		suggester:  suggester,
	}
}

// Run registers the event handler and blocks until the context is cancelled.
func (r *Receiver) Run(ctx context.Context) {
	if r.client == nil || r.client.GetClient() == nil {
		slog.Error("WhatsApp Receiver has no client available")
		return
	}

	r.client.GetClient().AddEventHandler(func(evt interface{}) {
		if msg, ok := evt.(*events.Message); ok {
			r.handleIncomingMessage(ctx, msg)
		}
	})
	slog.Debug("WhatsApp Receiver event handler registered")

	<-ctx.Done()
	slog.Debug("WhatsApp Receiver stopping due to context cancellation")
}

func (r *Receiver) handleIncomingMessage(ctx context.Context, evt *events.Message) {
	if evt.Message == nil || evt.Info.IsGroup || evt.Info.IsFromMe {
		return
	}
	owner := OwnerID(evt.Info.Sender.User)

	if evt.Message.ImageMessage != nil {
		// The wizard only needs an opaque reference; the message ID names
		// the upload well enough for the catalog record.
		r.handleEvent(ctx, owner, models.ImageInput{Ref: models.AttachmentRef(evt.Info.ID)})
		return
	}

	var text string
	if evt.Message.Conversation != nil {
		text = *evt.Message.Conversation
	} else if evt.Message.ExtendedTextMessage != nil && evt.Message.ExtendedTextMessage.Text != nil {
		text = *evt.Message.ExtendedTextMessage.Text
	} else {
		slog.Debug("WhatsApp Receiver ignoring non-text message", "owner", owner)
		return
	}
	r.handleText(ctx, owner, text)
}

func (r *Receiver) handleText(ctx context.Context, owner, text string) {
	trimmed := strings.TrimSpace(text)

	switch strings.ToLower(trimmed) {
	case "/newproduct":
		r.startWizard(ctx, owner, models.WizardProduct)
		return
	case "/newcategory":
		r.startWizard(ctx, owner, models.WizardCategory)
		return
	case "/cancel":
		r.cancelAll(ctx, owner)
		return
	case "/start", "/help", "help":
		r.notify(ctx, owner, helpText)
		return
	}

	if payload, ok := r.transport.PayloadForReply(owner, trimmed); ok {
		ev, err := models.ParsePayload(payload)
		if err != nil {
			slog.Warn("WhatsApp reply mapped to malformed payload", "owner", owner, "payload", payload, "error", err)
			return
		}
		if choice, isChoice := ev.(models.ChoiceInput); isChoice {
			if _, isSuggest := choice.Choice.(models.SuggestDescription); isSuggest {
				r.suggestDescription(ctx, owner)
				return
			}
		}
		r.handleEvent(ctx, owner, ev)
		return
	}

	if control, ok := keywordControl(trimmed); ok {
		r.handleEvent(ctx, owner, models.ControlInput{Control: control})
		return
	}

	r.handleEvent(ctx, owner, models.TextInput{Text: trimmed})
}

// keywordControl maps plain-word replies to wizard controls.
func keywordControl(text string) (models.Control, bool) {
	switch strings.ToLower(text) {
	case "skip":
		return models.ControlSkip, true
	case "back":
		return models.ControlBack, true
	case "cancel":
		return models.ControlCancel, true
	case "confirm", "yes":
		return models.ControlConfirm, true
	case "done":
		return models.ControlDone, true
	}
	return "", false
}

func (r *Receiver) suggestDescription(ctx context.Context, owner string) {
	if r.suggester == nil {
		r.notify(ctx, owner, "Description suggestions are not configured.")
		return
	}
	sess, ok := r.dispatcher.Sessions().Get(owner, models.WizardProduct)
	if !ok {
		return
	}
	text, err := r.suggester.SuggestDescription(ctx, sess.Product.Name)
	if err != nil {
		slog.Error("Description suggestion failed", "owner", owner, "error", err)
		r.notify(ctx, owner, "Could not generate a description, please type one.")
		return
	}
	r.handleEvent(ctx, owner, models.TextInput{Text: text})
}

func (r *Receiver) startWizard(ctx context.Context, owner string, kind models.WizardKind) {
	rr, err := r.dispatcher.StartWizard(ctx, owner, kind)
	if err != nil {
		slog.Error("StartWizard failed", "owner", owner, "kind", kind, "error", err)
		r.notify(ctx, owner, "Could not start the wizard, please try again.")
		return
	}
	r.deliver(ctx, owner, rr)
}

func (r *Receiver) cancelAll(ctx context.Context, owner string) {
	cancelled := false
	for _, kind := range models.AllWizardKinds {
		rr, active := r.dispatcher.Cancel(owner, kind)
		if !active {
			continue
		}
		cancelled = true
		r.deliver(ctx, owner, rr)
	}
	if !cancelled {
		r.notify(ctx, owner, "Nothing to cancel.")
	}
}

func (r *Receiver) handleEvent(ctx context.Context, owner string, ev models.Event) {
	rr, err := r.dispatcher.Route(ctx, owner, ev)
	if err != nil {
		slog.Error("Route failed", "owner", owner, "error", err)
		r.notify(ctx, owner, "Something went wrong, please try again.")
		return
	}
	if !rr.Handled {
		r.notify(ctx, owner, helpText)
		return
	}
	r.deliver(ctx, owner, rr)
}

func (r *Receiver) deliver(ctx context.Context, owner string, rr messaging.RouteResult) {
	if err := messaging.Deliver(ctx, r.transport, r.dispatcher.Sessions(), owner, rr); err != nil {
		slog.Error("Deliver failed", "owner", owner, "error", err)
	}
	switch rr.Result.Outcome {
	case models.OutcomeCancelled:
		r.transport.ClearPending(owner)
	case models.OutcomeCompleted:
		// On a failed commit the session stays at confirmation, so the
		// latest reply mapping must stay valid for the retry.
		if rr.CommitErr == nil {
			r.transport.ClearPending(owner)
		}
	}
}

func (r *Receiver) notify(ctx context.Context, owner, text string) {
	if err := r.transport.Notify(ctx, owner, text); err != nil {
		slog.Error("Notify failed", "owner", owner, "error", err)
	}
}
