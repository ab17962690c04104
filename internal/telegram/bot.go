package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MapleStore/CatalogBot/internal/messaging"
	"github.com/MapleStore/CatalogBot/internal/models"
)

const helpText = "Commands:\n" +
	"/newproduct - create a product step by step\n" +
	"/newcategory - create a category\n" +
	"/cancel - abandon the wizard in progress"

// Suggester drafts a product description from the product name.
type Suggester interface {
	SuggestDescription(ctx context.Context, productName string) (string, error)
}

// Bot polls Telegram updates and feeds them to the wizard dispatcher.
type Bot struct {
	api        *tgbotapi.BotAPI
	dispatcher *messaging.Dispatcher
	transport  *Transport
	suggester  Suggester
}

// Option configures the Bot.
type Option func(*Bot)

// WithSuggester enables AI description suggestions on the description step.
func WithSuggester(s Suggester) Option {
	return func(b *Bot) {
		b.suggester = s
	}
}

// NewBot connects to the Telegram bot API with the given token.
func NewBot(token string, dispatcher *messaging.Dispatcher, opts ...Option) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	slog.Info("Telegram authorized", "username", api.Self.UserName)

	b := &Bot{
		api:        api,
		dispatcher: dispatcher,
		transport:  NewTransport(api),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Transport returns the outbound adapter for registration on the mux.
func (b *Bot) Transport() *Transport {
	return b.transport
}

// RegisterCommands registers the bot command menu with Telegram.
func (b *Bot) RegisterCommands() error {
	commands := []tgbotapi.BotCommand{
		{Command: "newproduct", Description: "Create a product"},
		{Command: "newcategory", Description: "Create a category"},
		{Command: "cancel", Description: "Cancel the wizard in progress"},
	}
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	slog.Info("Registered telegram commands", "count", len(commands))
	return nil
}

// Run polls updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	slog.Info("Telegram bot started, waiting for messages")

	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutting down telegram bot")
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				slog.Warn("Updates channel closed, stopping telegram bot")
				return
			}
			if msg := update.Message; msg != nil {
				if msg.From == nil {
					continue
				}
				b.handleMessage(ctx, msg)
			}
			if cb := update.CallbackQuery; cb != nil {
				if cb.From == nil || cb.Message == nil {
					continue
				}
				b.ackCallback(cb.ID)
				b.handleCallback(ctx, cb)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	owner := OwnerID(msg.Chat.ID)

	if msg.IsCommand() {
		b.handleCommand(ctx, owner, msg.Command())
		return
	}

	if len(msg.Photo) > 0 {
		ref := largestPhotoRef(msg.Photo)
		b.handleEvent(ctx, owner, models.ImageInput{Ref: ref})
		return
	}
	if msg.Text != "" {
		b.handleEvent(ctx, owner, models.TextInput{Text: msg.Text})
	}
}

func (b *Bot) handleCommand(ctx context.Context, owner, command string) {
	slog.Debug("Telegram command received", "owner", owner, "command", command)
	switch command {
	case "newproduct":
		b.startWizard(ctx, owner, models.WizardProduct)
	case "newcategory":
		b.startWizard(ctx, owner, models.WizardCategory)
	case "cancel":
		b.cancelAll(ctx, owner)
	case "start", "help":
		b.notify(ctx, owner, helpText)
	default:
		b.notify(ctx, owner, "Unknown command. "+helpText)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	owner := OwnerID(cb.Message.Chat.ID)
	ev, err := models.ParsePayload(cb.Data)
	if err != nil {
		slog.Warn("Telegram callback payload rejected", "owner", owner, "data", cb.Data, "error", err)
		return
	}
	if choice, ok := ev.(models.ChoiceInput); ok {
		if _, isSuggest := choice.Choice.(models.SuggestDescription); isSuggest {
			b.suggestDescription(ctx, owner)
			return
		}
	}
	b.handleEvent(ctx, owner, ev)
}

// suggestDescription drafts a description for the in-progress product and
// feeds it back through the wizard as ordinary text input.
func (b *Bot) suggestDescription(ctx context.Context, owner string) {
	if b.suggester == nil {
		b.notify(ctx, owner, "Description suggestions are not configured.")
		return
	}
	sess, ok := b.dispatcher.Sessions().Get(owner, models.WizardProduct)
	if !ok {
		return
	}
	text, err := b.suggester.SuggestDescription(ctx, sess.Product.Name)
	if err != nil {
		slog.Error("Description suggestion failed", "owner", owner, "error", err)
		b.notify(ctx, owner, "Could not generate a description, please type one.")
		return
	}
	b.handleEvent(ctx, owner, models.TextInput{Text: text})
}

func (b *Bot) startWizard(ctx context.Context, owner string, kind models.WizardKind) {
	rr, err := b.dispatcher.StartWizard(ctx, owner, kind)
	if err != nil {
		slog.Error("StartWizard failed", "owner", owner, "kind", kind, "error", err)
		b.notify(ctx, owner, "Could not start the wizard, please try again.")
		return
	}
	b.deliver(ctx, owner, rr)
}

func (b *Bot) cancelAll(ctx context.Context, owner string) {
	cancelled := false
	for _, kind := range models.AllWizardKinds {
		rr, active := b.dispatcher.Cancel(owner, kind)
		if !active {
			continue
		}
		cancelled = true
		b.deliver(ctx, owner, rr)
	}
	if !cancelled {
		b.notify(ctx, owner, "Nothing to cancel.")
	}
}

func (b *Bot) handleEvent(ctx context.Context, owner string, ev models.Event) {
	rr, err := b.dispatcher.Route(ctx, owner, ev)
	if err != nil {
		slog.Error("Route failed", "owner", owner, "error", err)
		b.notify(ctx, owner, "Something went wrong, please try again.")
		return
	}
	if !rr.Handled {
		b.notify(ctx, owner, helpText)
		return
	}
	b.deliver(ctx, owner, rr)
}

func (b *Bot) deliver(ctx context.Context, owner string, rr messaging.RouteResult) {
	if err := messaging.Deliver(ctx, b.transport, b.dispatcher.Sessions(), owner, rr); err != nil {
		slog.Error("Deliver failed", "owner", owner, "error", err)
	}
}

func (b *Bot) notify(ctx context.Context, owner, text string) {
	if err := b.transport.Notify(ctx, owner, text); err != nil {
		slog.Error("Notify failed", "owner", owner, "error", err)
	}
}

func (b *Bot) ackCallback(callbackID string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		slog.Debug("Failed to acknowledge callback", "error", err)
	}
}

// largestPhotoRef picks the highest-resolution rendition Telegram offers.
func largestPhotoRef(photos []tgbotapi.PhotoSize) models.AttachmentRef {
	best := photos[0]
	for _, p := range photos[1:] {
		if p.Width*p.Height > best.Width*best.Height {
			best = p
		}
	}
	return models.AttachmentRef(best.FileID)
}
