package wire

// CommandBody is the outbound body for drone command tags.
type CommandBody struct {
	Targets []string `json:"targets"`
	Payload any      `json:"payload,omitempty"`
}

// ResponseBody is the body of a response to a receipt-bearing command. Each
// addressed target appears in exactly one of the three maps; Reason is only
// populated on ACK-NAK rejections. On a receipt-poll response the maps are
// keyed by receipt token rather than target id.
type ResponseBody struct {
	Reason  string            `json:"reason,omitempty"`
	Error   map[string]string `json:"error,omitempty"`
	Result  map[string]any    `json:"result,omitempty"`
	Receipt map[string]string `json:"receipt,omitempty"`
}

// ReceiptQueryBody is the outbound body of an RCP-QRY poll.
type ReceiptQueryBody struct {
	Receipts []string `json:"receipts"`
}

// StatusQueryBody is the outbound body of a STA-QRY.
type StatusQueryBody struct {
	IDs []string `json:"ids"`
}

// StatusBody is the body of a STA-RSP. For every queried id exactly one of
// the two maps has an entry; Error values may be a plain string or a
// structured object.
type StatusBody struct {
	Status map[string]any `json:"status,omitempty"`
	Error  map[string]any `json:"error,omitempty"`
}
