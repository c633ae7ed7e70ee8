package models

// EndorsementState is the derived, presentation-level classification of an
// application on the endorsement screen. It is recomputed from application
// status plus evaluation content and never persisted.
type EndorsementState string

const (
	// EndorsementStateEndorsed means the application already sits with the committee.
	EndorsementStateEndorsed EndorsementState = "endorsed"
	// EndorsementStateConditional means endorsement needs committee discretion.
	EndorsementStateConditional EndorsementState = "conditional"
	// EndorsementStateReady means the application can be endorsed as-is.
	EndorsementStateReady EndorsementState = "ready"
	// EndorsementStatePending means no evaluation outcome applies yet.
	EndorsementStatePending EndorsementState = "pending"
	// EndorsementStateRejected means the application was explicitly rejected.
	EndorsementStateRejected EndorsementState = "rejected"
)
