// Package telegram adapts the wizard to Telegram: prompts become messages
// with inline keyboards, callback data carries choice payloads, and prompt
// retraction deletes the obsolete messages.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MapleStore/CatalogBot/internal/models"
)

// Scheme is the owner-identifier prefix for Telegram chats.
const Scheme = "tg"

// choiceColumns controls how many inline buttons share a keyboard row.
const choiceColumns = 2

// BotAPI is the interface for Telegram bot API operations.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// OwnerID builds the scheme-prefixed owner identifier for a chat.
func OwnerID(chatID int64) string {
	return fmt.Sprintf("%s:%d", Scheme, chatID)
}

func chatIDFromOwner(owner string) (int64, error) {
	raw, ok := strings.CutPrefix(owner, Scheme+":")
	if !ok {
		return 0, fmt.Errorf("owner %q is not a telegram identifier", owner)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("owner %q has malformed chat ID: %w", owner, err)
	}
	return id, nil
}

// Transport implements the messaging transport over the Telegram bot API.
type Transport struct {
	api BotAPI
}

// NewTransport creates a Transport on top of a bot API client.
func NewTransport(api BotAPI) *Transport {
	return &Transport{api: api}
}

// SendPrompt sends the prompt text with its choices rendered as an inline
// keyboard and returns the message ID as the retraction reference.
func (t *Transport) SendPrompt(ctx context.Context, owner string, prompt *models.PromptSpec) (models.PromptRef, error) {
	chatID, err := chatIDFromOwner(owner)
	if err != nil {
		return "", err
	}
	msg := tgbotapi.NewMessage(chatID, prompt.Text)
	if len(prompt.Choices) > 0 {
		msg.ReplyMarkup = promptKeyboard(prompt)
	}
	sent, err := t.api.Send(msg)
	if err != nil {
		slog.Error("Telegram SendPrompt failed", "owner", owner, "step", prompt.Step, "error", err)
		return "", fmt.Errorf("failed to send prompt: %w", err)
	}
	slog.Debug("Telegram SendPrompt succeeded", "owner", owner, "step", prompt.Step, "messageID", sent.MessageID)
	return models.PromptRef(strconv.Itoa(sent.MessageID)), nil
}

// RetractPrompt deletes a previously sent prompt message.
func (t *Transport) RetractPrompt(ctx context.Context, owner string, ref models.PromptRef) error {
	chatID, err := chatIDFromOwner(owner)
	if err != nil {
		return err
	}
	msgID, err := strconv.Atoi(string(ref))
	if err != nil {
		return fmt.Errorf("prompt ref %q is not a telegram message ID: %w", ref, err)
	}
	if _, err := t.api.Request(tgbotapi.NewDeleteMessage(chatID, msgID)); err != nil {
		slog.Debug("Telegram RetractPrompt failed", "owner", owner, "messageID", msgID, "error", err)
		return fmt.Errorf("failed to delete message %d: %w", msgID, err)
	}
	return nil
}

// Notify sends plain informational text.
func (t *Transport) Notify(ctx context.Context, owner string, text string) error {
	chatID, err := chatIDFromOwner(owner)
	if err != nil {
		return err
	}
	if _, err := t.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		slog.Error("Telegram Notify failed", "owner", owner, "error", err)
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

// promptKeyboard lays the prompt's choices out as inline keyboard rows.
// Navigation choices (payloads with the wizard control prefix) get their own
// bottom row so Back and Cancel always sit together.
func promptKeyboard(prompt *models.PromptSpec) tgbotapi.InlineKeyboardMarkup {
	var pick, nav []tgbotapi.InlineKeyboardButton
	for _, c := range prompt.Choices {
		btn := tgbotapi.NewInlineKeyboardButtonData(c.Label, c.Payload)
		if isNavPayload(c.Payload) {
			nav = append(nav, btn)
		} else {
			pick = append(pick, btn)
		}
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(pick); i += choiceColumns {
		end := i + choiceColumns
		if end > len(pick) {
			end = len(pick)
		}
		rows = append(rows, pick[i:end])
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func isNavPayload(payload string) bool {
	switch payload {
	case models.PayloadSkip, models.PayloadBack, models.PayloadCancel, models.PayloadConfirm, models.PayloadDone:
		return true
	}
	return false
}
