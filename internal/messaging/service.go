// Package messaging routes inbound operator events to the wizard core and
// delivers the resulting prompts through a pluggable transport abstraction.
package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/MapleStore/CatalogBot/internal/models"
)

// Transport is the outbound boundary of the wizard core. Implementations
// (Telegram, WhatsApp) decide platform presentation: the core only asks for a
// step prompt with structured choices and never formats platform markup.
type Transport interface {
	// SendPrompt shows a prompt to the operator and returns an opaque
	// reference usable to retract it later.
	SendPrompt(ctx context.Context, owner string, prompt *models.PromptSpec) (models.PromptRef, error)

	// RetractPrompt removes or invalidates a previously shown prompt.
	RetractPrompt(ctx context.Context, owner string, ref models.PromptRef) error

	// Notify sends plain informational text (acknowledgments, errors).
	Notify(ctx context.Context, owner string, text string) error
}

// Mux fans Transport calls out to the adapter owning the operator identifier.
// Owner identifiers are scheme-prefixed ("tg:12345", "wa:15551234") so that
// sessions from different transports share one session store without clashing.
type Mux struct {
	mu         sync.RWMutex
	transports map[string]Transport
}

// NewMux creates an empty transport mux.
func NewMux() *Mux {
	return &Mux{transports: make(map[string]Transport)}
}

// Register binds a scheme prefix to a transport adapter.
func (m *Mux) Register(scheme string, t Transport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transports[scheme] = t
	slog.Debug("Mux registered transport", "scheme", scheme)
}

func (m *Mux) transportFor(owner string) (Transport, error) {
	scheme, _, ok := strings.Cut(owner, ":")
	if !ok {
		return nil, fmt.Errorf("owner %q has no transport scheme", owner)
	}
	m.mu.RLock()
	t, exists := m.transports[scheme]
	m.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("no transport registered for scheme %q", scheme)
	}
	return t, nil
}

// SendPrompt implements Transport.
func (m *Mux) SendPrompt(ctx context.Context, owner string, prompt *models.PromptSpec) (models.PromptRef, error) {
	t, err := m.transportFor(owner)
	if err != nil {
		return "", err
	}
	return t.SendPrompt(ctx, owner, prompt)
}

// RetractPrompt implements Transport.
func (m *Mux) RetractPrompt(ctx context.Context, owner string, ref models.PromptRef) error {
	t, err := m.transportFor(owner)
	if err != nil {
		return err
	}
	return t.RetractPrompt(ctx, owner, ref)
}

// Notify implements Transport.
func (m *Mux) Notify(ctx context.Context, owner string, text string) error {
	t, err := m.transportFor(owner)
	if err != nil {
		return err
	}
	return t.Notify(ctx, owner, text)
}
