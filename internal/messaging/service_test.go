package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/MapleStore/CatalogBot/internal/models"
	"github.com/MapleStore/CatalogBot/internal/wizard"
)

type mockTransport struct {
	prompts   []*models.PromptSpec
	notices   []string
	retracted []models.PromptRef
	sendErr   error
	nextRef   int
}

func (m *mockTransport) SendPrompt(ctx context.Context, owner string, prompt *models.PromptSpec) (models.PromptRef, error) {
	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.prompts = append(m.prompts, prompt)
	m.nextRef++
	return models.PromptRef(fmt.Sprintf("msg-%d", m.nextRef)), nil
}

func (m *mockTransport) RetractPrompt(ctx context.Context, owner string, ref models.PromptRef) error {
	m.retracted = append(m.retracted, ref)
	return nil
}

func (m *mockTransport) Notify(ctx context.Context, owner string, text string) error {
	m.notices = append(m.notices, text)
	return nil
}

func TestMuxRoutesBySchemePrefix(t *testing.T) {
	tg := &mockTransport{}
	wa := &mockTransport{}
	mux := NewMux()
	mux.Register("tg", tg)
	mux.Register("wa", wa)

	ctx := context.Background()
	if err := mux.Notify(ctx, "tg:1", "hello"); err != nil {
		t.Fatalf("Notify tg error: %v", err)
	}
	if err := mux.Notify(ctx, "wa:1", "hola"); err != nil {
		t.Fatalf("Notify wa error: %v", err)
	}
	if len(tg.notices) != 1 || tg.notices[0] != "hello" {
		t.Errorf("tg notices = %v", tg.notices)
	}
	if len(wa.notices) != 1 || wa.notices[0] != "hola" {
		t.Errorf("wa notices = %v", wa.notices)
	}
}

func TestMuxRejectsUnknownOwner(t *testing.T) {
	mux := NewMux()
	mux.Register("tg", &mockTransport{})

	if err := mux.Notify(context.Background(), "sms:1", "hi"); err == nil {
		t.Error("Notify accepted owner with unregistered scheme")
	}
	if err := mux.Notify(context.Background(), "12345", "hi"); err == nil {
		t.Error("Notify accepted owner without a scheme prefix")
	}
}

func TestDeliverSendsPromptAndRecordsRef(t *testing.T) {
	mt := &mockTransport{}
	sessions := wizard.NewSessionStore()
	sessions.Start("tg:1", models.WizardProduct)

	rr := RouteResult{
		Handled: true,
		Kind:    models.WizardProduct,
		Result: models.TransitionResult{
			Outcome: models.OutcomeAdvanced,
			Prompt:  &models.PromptSpec{Step: models.StepName, Text: "What is the product called?"},
		},
	}
	if err := Deliver(context.Background(), mt, sessions, "tg:1", rr); err != nil {
		t.Fatalf("Deliver error: %v", err)
	}
	if len(mt.prompts) != 1 {
		t.Fatalf("prompts sent = %d, want 1", len(mt.prompts))
	}
	if ref, ok := sessions.PromptRefFor("tg:1", models.WizardProduct, models.StepName); !ok || ref != "msg-1" {
		t.Errorf("recorded ref = %q, %v; want msg-1", ref, ok)
	}
}

func TestDeliverRetractsAndNotifies(t *testing.T) {
	mt := &mockTransport{}
	sessions := wizard.NewSessionStore()

	rr := RouteResult{
		Handled:     true,
		Kind:        models.WizardProduct,
		RetractRefs: []models.PromptRef{"msg-1", "msg-2"},
		Result: models.TransitionResult{
			Outcome: models.OutcomeCancelled,
			Notice:  "Creation cancelled.",
		},
	}
	if err := Deliver(context.Background(), mt, sessions, "tg:1", rr); err != nil {
		t.Fatalf("Deliver error: %v", err)
	}
	if len(mt.retracted) != 2 {
		t.Errorf("retracted = %v, want two refs", mt.retracted)
	}
	if len(mt.notices) != 1 || mt.notices[0] != "Creation cancelled." {
		t.Errorf("notices = %v", mt.notices)
	}
}

func TestDeliverCommitFailureNotice(t *testing.T) {
	mt := &mockTransport{}
	rr := RouteResult{
		Handled:   true,
		Kind:      models.WizardProduct,
		CommitErr: errors.New("db down"),
		Result:    models.TransitionResult{Outcome: models.OutcomeCompleted},
	}
	if err := Deliver(context.Background(), mt, wizard.NewSessionStore(), "tg:1", rr); err != nil {
		t.Fatalf("Deliver error: %v", err)
	}
	if len(mt.notices) != 1 || !strings.Contains(mt.notices[0], "Saving failed") {
		t.Errorf("notices = %v, want saving-failed warning", mt.notices)
	}
}

func TestDeliverCreationNoticeNamesKind(t *testing.T) {
	for _, tc := range []struct {
		kind models.WizardKind
		want string
	}{
		{models.WizardProduct, "product"},
		{models.WizardCategory, "category"},
	} {
		mt := &mockTransport{}
		rr := RouteResult{
			Handled:   true,
			Kind:      tc.kind,
			CreatedID: "id-1",
			Result:    models.TransitionResult{Outcome: models.OutcomeCompleted},
		}
		if err := Deliver(context.Background(), mt, wizard.NewSessionStore(), "tg:1", rr); err != nil {
			t.Fatalf("Deliver error: %v", err)
		}
		if len(mt.notices) != 1 || !strings.Contains(mt.notices[0], tc.want) {
			t.Errorf("kind %s: notices = %v, want mention of %q", tc.kind, mt.notices, tc.want)
		}
	}
}

func TestExpireSessionRetractsAllPrompts(t *testing.T) {
	mt := &mockTransport{}
	sess := models.NewSession("tg:1", models.WizardProduct)
	sess.PromptRefs[models.StepName] = "msg-1"
	sess.PromptRefs[models.StepDescription] = "msg-2"

	ExpireSession(context.Background(), mt, sess)

	if len(mt.retracted) != 2 {
		t.Errorf("retracted = %v, want both prompt refs", mt.retracted)
	}
	if len(mt.notices) != 1 || !strings.Contains(mt.notices[0], "timed out") {
		t.Errorf("notices = %v, want timeout notice", mt.notices)
	}
}
