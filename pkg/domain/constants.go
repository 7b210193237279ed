package domain

// Reserved effect types.
const (
	// EffectEndConversation marks a node as terminal: entering it ends the session.
	EffectEndConversation = "end_conversation"
)

// End reasons recorded on a session when it stops.
const (
	EndReasonConversation = "end_conversation"
	EndReasonDisconnect   = "disconnect"
	EndReasonCancelled    = "cancelled"
	EndReasonTransport    = "transport_error"
	EndReasonModel        = "model_error"
	EndReasonInvalidState = "invalid_state"
)
