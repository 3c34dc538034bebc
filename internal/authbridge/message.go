package authbridge

// Kind discriminates bridge messages. The set is closed: any other value
// is outside the protocol and dropped on receipt.
type Kind string

const (
	// KindSetToken stores the carried token in the session tier.
	KindSetToken Kind = "SET_AUTH_TOKEN"
	// KindClearToken removes the token from both storage tiers.
	KindClearToken Kind = "CLEAR_AUTH_TOKEN"
	// KindCheckStatus requests the current authentication state; read-only.
	KindCheckStatus Kind = "CHECK_AUTH_STATUS"
	// KindRequestAuth asks the host to push credentials.
	KindRequestAuth Kind = "REQUEST_AUTH"
	// KindAuthStatus reports the authentication state after a control message.
	KindAuthStatus Kind = "AUTH_STATUS"
)

// Message is the wire envelope exchanged between host and embedded client.
// Token is only meaningful on SET_AUTH_TOKEN, Authenticated only on
// AUTH_STATUS.
type Message struct {
	Type          Kind   `json:"type"`
	Token         string `json:"token,omitempty"`
	Authenticated *bool  `json:"authenticated,omitempty"`
}

// statusMessage builds the AUTH_STATUS reply for the given state.
func statusMessage(authenticated bool) Message {
	return Message{Type: KindAuthStatus, Authenticated: &authenticated}
}
