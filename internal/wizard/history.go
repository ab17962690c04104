package wizard

import (
	"log/slog"

	"github.com/MapleStore/CatalogBot/internal/models"
)

// Navigation history: each session records the reference of the last prompt
// shown per step, so back-navigation can retract or replace obsolete prompts.
// The logical predecessor of a step is always computed from the models step
// table, never re-derived from transport state.

// RecordPromptRef stores the transport reference of the prompt just shown for
// a step of the owner's active session. It is a no-op when the session ended
// between the transition and the send.
func (s *SessionStore) RecordPromptRef(owner string, kind models.WizardKind, step models.Step, ref models.PromptRef) {
	s.Update(owner, kind, func(cur *models.Session) *models.Session {
		if cur == nil {
			slog.Debug("RecordPromptRef for ended session", "owner", owner, "kind", kind, "step", step)
			return nil
		}
		next := cur.Clone()
		next.PromptRefs[step] = ref
		return next
	})
}

// PromptRefFor returns the recorded prompt reference for a step of the
// owner's active session.
func (s *SessionStore) PromptRefFor(owner string, kind models.WizardKind, step models.Step) (models.PromptRef, bool) {
	sess, ok := s.Get(owner, kind)
	if !ok {
		return "", false
	}
	ref, ok := sess.PromptRefs[step]
	return ref, ok
}

// stepsAfter returns the steps strictly after target in the kind's forward
// order, up to and including from. These are the steps whose prompts become
// obsolete when navigating back from from to target.
func stepsAfter(kind models.WizardKind, target, from models.Step) []models.Step {
	var out []models.Step
	collecting := false
	for _, s := range models.StepOrder(kind) {
		if collecting {
			out = append(out, s)
		}
		if s == target {
			collecting = true
		}
		if s == from {
			break
		}
	}
	return out
}

// RetractableRefs resolves the retract list of a transition result against a
// session's recorded prompt references.
func RetractableRefs(sess *models.Session, steps []models.Step) []models.PromptRef {
	if sess == nil {
		return nil
	}
	refs := make([]models.PromptRef, 0, len(steps))
	for _, step := range steps {
		if ref, ok := sess.PromptRefs[step]; ok {
			refs = append(refs, ref)
		}
	}
	return refs
}
