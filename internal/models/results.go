// Package models defines transition results and prompt specifications.
package models

// Outcome tags the variant of a TransitionResult.
type Outcome string

// Outcome constants.
const (
	// OutcomeAdvanced means the input was accepted; Session is the replacement
	// state and Prompt describes what to show next. The step may be unchanged
	// for multi-entry steps (size toggles, image accumulation, quantity loops).
	OutcomeAdvanced Outcome = "advanced"
	// OutcomeRejected means the input failed validation; the step is unchanged
	// and Prompt re-prompts it. Rejections are always re-prompted, never
	// silently dropped.
	OutcomeRejected Outcome = "rejected"
	// OutcomeCompleted means the wizard reached its end with an explicit
	// confirm; the accumulated fields are ready for the persistence handoff.
	OutcomeCompleted Outcome = "completed"
	// OutcomeCancelled means the session ends without side effects.
	OutcomeCancelled Outcome = "cancelled"
)

// CancelReason distinguishes why a session ended with OutcomeCancelled.
type CancelReason string

// Cancel reason constants.
const (
	CancelByUser CancelReason = "user"
	// CancelDeadEnd marks the designed early exit taken when the chosen
	// spotlight group offers no categories.
	CancelDeadEnd CancelReason = "dead_end"
	// CancelExpired marks an inactivity expiry, treated as an implicit cancel
	// so prompts can still be retracted.
	CancelExpired CancelReason = "expired"
)

// PromptChoice is one selectable option attached to a prompt. Payload is the
// stable button-payload encoding defined in payload.go; the transport round-trips
// it verbatim.
type PromptChoice struct {
	Label   string
	Payload string
}

// PromptSpec describes the prompt to show for a step. It carries canonical
// plain text and structured choices; transports decide platform presentation
// (inline keyboards, numbered lists) themselves.
type PromptSpec struct {
	Step    Step
	Text    string
	Choices []PromptChoice
}

// TransitionResult is the tagged outcome of applying one event to a session.
type TransitionResult struct {
	Outcome Outcome

	// Session is the replacement session for OutcomeAdvanced and
	// OutcomeRejected. It is nil for terminal outcomes.
	Session *Session

	// Prompt is the next prompt (advanced) or re-prompt (rejected).
	Prompt *PromptSpec

	// Retract lists steps whose previously shown prompts are now obsolete and
	// should be retracted by the caller using the session's prompt refs.
	Retract []Step

	// Notice is operator-facing text accompanying terminal outcomes
	// (cancellation acknowledgment, dead-end explanation).
	Notice string

	Reason CancelReason

	// Completed payloads, populated for OutcomeCompleted.
	Product  *ProductFields
	Category *CategoryFields
}
