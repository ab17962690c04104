package messaging

import (
	"context"
	"log/slog"

	"github.com/MapleStore/CatalogBot/internal/models"
	"github.com/MapleStore/CatalogBot/internal/wizard"
)

// RouteResult reports where an inbound event went and what came of it.
type RouteResult struct {
	// Handled is false when the owner has no active wizard of any kind; the
	// caller decides whether to hint at the start commands or stay silent.
	Handled bool

	Kind   models.WizardKind
	Result models.TransitionResult

	// RetractRefs are prompt references made obsolete by this transition
	// (back-navigation, cancellation, restart); the transport should retract
	// them before showing the next prompt.
	RetractRefs []models.PromptRef

	// CreatedID is the persisted entity's identifier after a successful
	// confirm. CommitErr is set instead when the persistence handoff failed;
	// the session stays intact so the operator can retry the confirmation.
	CreatedID string
	CommitErr error
}

// Dispatcher routes inbound events for an owner to whichever wizard kind is
// active, applying the transition inside the session store's per-key critical
// section so concurrent duplicate events cannot tear the session.
type Dispatcher struct {
	sessions  *wizard.SessionStore
	engine    *wizard.Engine
	assembler *wizard.Assembler
}

// NewDispatcher wires the dispatcher to its collaborators.
func NewDispatcher(sessions *wizard.SessionStore, engine *wizard.Engine, assembler *wizard.Assembler) *Dispatcher {
	return &Dispatcher{sessions: sessions, engine: engine, assembler: assembler}
}

// Sessions exposes the session store for prompt-reference bookkeeping.
func (d *Dispatcher) Sessions() *wizard.SessionStore {
	return d.sessions
}

// StartWizard begins (or restarts) a wizard for the owner and returns the
// first prompt. Prompts of a superseded session are flagged for retraction.
func (d *Dispatcher) StartWizard(ctx context.Context, owner string, kind models.WizardKind) (RouteResult, error) {
	rr := RouteResult{Handled: true, Kind: kind}

	// Superseded refs are collected in the same critical section that installs
	// the fresh session, so a prompt recorded concurrently cannot slip past
	// retraction.
	var sess *models.Session
	d.sessions.Update(owner, kind, func(cur *models.Session) *models.Session {
		if cur != nil {
			rr.RetractRefs = allPromptRefs(cur)
			slog.Debug("Dispatcher superseding active session", "owner", owner, "kind", kind, "step", cur.Step)
		}
		fresh := models.NewSession(owner, kind)
		sess = fresh.Clone()
		return fresh
	})
	prompt, err := d.engine.PromptFor(ctx, sess)
	if err != nil {
		d.sessions.Clear(owner, kind)
		return RouteResult{}, err
	}
	rr.Result = models.TransitionResult{Outcome: models.OutcomeAdvanced, Session: sess, Prompt: prompt}
	slog.Info("Dispatcher started wizard", "owner", owner, "kind", kind)
	return rr, nil
}

// Route applies one typed event to the owner's active wizard. It checks every
// known kind and reports Handled=false when none is active, so the caller can
// fall back to non-wizard behavior.
func (d *Dispatcher) Route(ctx context.Context, owner string, ev models.Event) (RouteResult, error) {
	for _, kind := range models.AllWizardKinds {
		rr, routed, err := d.routeKind(ctx, owner, kind, ev)
		if err != nil {
			return RouteResult{}, err
		}
		if routed {
			return rr, nil
		}
	}
	slog.Debug("Dispatcher no active session", "owner", owner)
	return RouteResult{Handled: false}, nil
}

func (d *Dispatcher) routeKind(ctx context.Context, owner string, kind models.WizardKind, ev models.Event) (RouteResult, bool, error) {
	var (
		rr       RouteResult
		routed   bool
		applyErr error
	)

	d.sessions.Update(owner, kind, func(cur *models.Session) *models.Session {
		if cur == nil {
			return nil
		}
		routed = true
		rr.Handled = true
		rr.Kind = kind

		res, err := d.engine.Apply(ctx, cur, ev)
		if err != nil {
			applyErr = err
			return cur
		}
		rr.Result = res

		switch res.Outcome {
		case models.OutcomeAdvanced, models.OutcomeRejected:
			rr.RetractRefs = wizard.RetractableRefs(cur, res.Retract)
			return res.Session
		case models.OutcomeCancelled:
			rr.RetractRefs = allPromptRefs(cur)
			return nil
		case models.OutcomeCompleted:
			id, err := d.commit(ctx, res)
			if err != nil {
				// The session survives a persistence failure so the operator
				// can retry the confirmation without re-entering fields.
				rr.CommitErr = err
				return cur
			}
			rr.CreatedID = id
			rr.RetractRefs = allPromptRefs(cur)
			return nil
		default:
			applyErr = applyErrUnknown(res.Outcome)
			return cur
		}
	})

	if applyErr != nil {
		return RouteResult{}, routed, applyErr
	}
	return rr, routed, nil
}

func (d *Dispatcher) commit(ctx context.Context, res models.TransitionResult) (string, error) {
	if res.Product != nil {
		return d.assembler.CommitProduct(ctx, *res.Product)
	}
	return d.assembler.CommitCategory(ctx, *res.Category)
}

// Cancel force-cancels the owner's wizard of the given kind, returning the
// retraction list. Used by /cancel commands and session expiry.
func (d *Dispatcher) Cancel(owner string, kind models.WizardKind) (RouteResult, bool) {
	var (
		rr     RouteResult
		active bool
	)
	d.sessions.Update(owner, kind, func(cur *models.Session) *models.Session {
		if cur == nil {
			return nil
		}
		active = true
		rr = RouteResult{
			Handled: true,
			Kind:    kind,
			Result: models.TransitionResult{
				Outcome: models.OutcomeCancelled,
				Reason:  models.CancelByUser,
				Notice:  "Creation cancelled.",
			},
			RetractRefs: allPromptRefs(cur),
		}
		return nil
	})
	return rr, active
}

func allPromptRefs(sess *models.Session) []models.PromptRef {
	refs := make([]models.PromptRef, 0, len(sess.PromptRefs))
	for _, ref := range sess.PromptRefs {
		refs = append(refs, ref)
	}
	return refs
}

type unknownOutcomeError struct{ outcome models.Outcome }

func (e unknownOutcomeError) Error() string {
	return "unknown transition outcome " + string(e.outcome)
}

func applyErrUnknown(outcome models.Outcome) error {
	return unknownOutcomeError{outcome: outcome}
}
