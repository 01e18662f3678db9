package logging

// Structured log keys shared by every package.
const (
	FieldComponent     = "component"
	FieldSlug          = "slug"
	FieldColor         = "color"
	FieldPhase         = "phase" // skip_check, ai, fallback, persist, review
	FieldCorrelationID = "correlation_id"
	FieldEventType     = "event_type"
	FieldErrorHint     = "error_hint"
	FieldImpact        = "impact"
	FieldDecisionType  = "decision_type"

	fieldDecisionResult = "decision_result"
	fieldDecisionReason = "decision_reason"
)
