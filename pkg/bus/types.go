package bus

// InboundMessage is one user submission from a front-end.
type InboundMessage struct {
	Source   string `json:"source"`
	SenderID string `json:"sender_id"`
	ChatID   string `json:"chat_id"`
	Text     string `json:"text"`
	// Direct forces relay dispatch, skipping the rule registry. Set by
	// explicit send actions (e.g. the /send REPL command).
	Direct bool `json:"direct,omitempty"`
}

// OutboundMessage is one reply on its way back to a front-end.
type OutboundMessage struct {
	Source string `json:"source"`
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}
