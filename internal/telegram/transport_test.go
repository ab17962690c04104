package telegram

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MapleStore/CatalogBot/internal/models"
)

type mockBotAPI struct {
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
	nextMsgID int
}

func (m *mockBotAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.sent = append(m.sent, c)
	m.nextMsgID++
	return tgbotapi.Message{MessageID: m.nextMsgID}, nil
}

func (m *mockBotAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	m.requested = append(m.requested, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func TestOwnerIDRoundTrip(t *testing.T) {
	owner := OwnerID(123456)
	if owner != "tg:123456" {
		t.Fatalf("OwnerID = %q, want tg:123456", owner)
	}
	chatID, err := chatIDFromOwner(owner)
	if err != nil {
		t.Fatalf("chatIDFromOwner error: %v", err)
	}
	if chatID != 123456 {
		t.Errorf("chatID = %d, want 123456", chatID)
	}
}

func TestChatIDFromOwnerRejectsForeign(t *testing.T) {
	for _, owner := range []string{"wa:123", "tg:abc", "123456"} {
		if _, err := chatIDFromOwner(owner); err == nil {
			t.Errorf("chatIDFromOwner(%q) accepted, want error", owner)
		}
	}
}

func TestSendPromptReturnsMessageIDRef(t *testing.T) {
	api := &mockBotAPI{}
	tr := NewTransport(api)

	ref, err := tr.SendPrompt(context.Background(), "tg:1", &models.PromptSpec{
		Step: models.StepName,
		Text: "What is the product called?",
	})
	if err != nil {
		t.Fatalf("SendPrompt error: %v", err)
	}
	if ref != "1" {
		t.Errorf("ref = %q, want message ID 1", ref)
	}
	if len(api.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(api.sent))
	}
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("sent %T, want MessageConfig", api.sent[0])
	}
	if msg.Text != "What is the product called?" || msg.ChatID != 1 {
		t.Errorf("message = %+v", msg)
	}
	if msg.ReplyMarkup != nil {
		t.Error("choiceless prompt got a keyboard")
	}
}

func TestPromptKeyboardLayout(t *testing.T) {
	prompt := &models.PromptSpec{
		Step: models.StepColor,
		Choices: []models.PromptChoice{
			{Label: "Black", Payload: models.ColorPayload("Black", "#000000")},
			{Label: "White", Payload: models.ColorPayload("White", "#FFFFFF")},
			{Label: "Red", Payload: models.ColorPayload("Red", "#FF0000")},
			{Label: "Skip", Payload: models.PayloadSkip},
			{Label: "Back", Payload: models.PayloadBack},
			{Label: "Cancel", Payload: models.PayloadCancel},
		},
	}
	kb := promptKeyboard(prompt)

	// Three pick buttons packed two per row, then one nav row.
	if len(kb.InlineKeyboard) != 3 {
		t.Fatalf("rows = %d, want 3", len(kb.InlineKeyboard))
	}
	if len(kb.InlineKeyboard[0]) != 2 || len(kb.InlineKeyboard[1]) != 1 {
		t.Errorf("pick rows have %d and %d buttons, want 2 and 1",
			len(kb.InlineKeyboard[0]), len(kb.InlineKeyboard[1]))
	}
	nav := kb.InlineKeyboard[2]
	if len(nav) != 3 || *nav[0].CallbackData != models.PayloadSkip {
		t.Errorf("nav row = %+v", nav)
	}
}

func TestRetractPromptDeletesMessage(t *testing.T) {
	api := &mockBotAPI{}
	tr := NewTransport(api)

	if err := tr.RetractPrompt(context.Background(), "tg:7", "42"); err != nil {
		t.Fatalf("RetractPrompt error: %v", err)
	}
	if len(api.requested) != 1 {
		t.Fatalf("requested %d calls, want 1", len(api.requested))
	}
	del, ok := api.requested[0].(tgbotapi.DeleteMessageConfig)
	if !ok {
		t.Fatalf("requested %T, want DeleteMessageConfig", api.requested[0])
	}
	if del.ChatID != 7 || del.MessageID != 42 {
		t.Errorf("delete = %+v", del)
	}
}

func TestRetractPromptRejectsBadRef(t *testing.T) {
	tr := NewTransport(&mockBotAPI{})
	if err := tr.RetractPrompt(context.Background(), "tg:7", "not-a-number"); err == nil {
		t.Error("RetractPrompt accepted a non-numeric ref")
	}
}

func TestNotifySendsPlainText(t *testing.T) {
	api := &mockBotAPI{}
	tr := NewTransport(api)

	if err := tr.Notify(context.Background(), "tg:7", "done"); err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	msg := api.sent[0].(tgbotapi.MessageConfig)
	if msg.Text != "done" || msg.ChatID != 7 {
		t.Errorf("message = %+v", msg)
	}
}

func TestLargestPhotoRef(t *testing.T) {
	photos := []tgbotapi.PhotoSize{
		{FileID: "small", Width: 90, Height: 90},
		{FileID: "big", Width: 800, Height: 800},
		{FileID: "medium", Width: 320, Height: 320},
	}
	if got := largestPhotoRef(photos); got != "big" {
		t.Errorf("largestPhotoRef = %q, want big", got)
	}
}
