package wire

// Notification bodies. The server emits these without a correlation id; the
// hub hands the raw body to whichever handler is registered for the tag.

// SystemMessageBody is the body of a SYS-MSG notification.
type SystemMessageBody struct {
	Severity string `json:"severity,omitempty"`
	Text     string `json:"text"`
}

// ClockInfoBody is the body of a CLK-INF notification. ServerTime is unix
// milliseconds on the server clock.
type ClockInfoBody struct {
	ServerTime int64 `json:"server_time"`
}

// LinkStateBody is the body of a CON-STA notification reporting a drone's
// link coming up or going down.
type LinkStateBody struct {
	ID        string `json:"id"`
	Connected bool   `json:"connected"`
}

// ObjectDeleteBody is the body of an OBJ-DEL notification.
type ObjectDeleteBody struct {
	ID string `json:"id"`
}

// PositionBody is the body of a POS-INF telemetry notification.
type PositionBody struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Altitude  float64 `json:"alt"`
	Heading   float64 `json:"heading,omitempty"`
	Speed     float64 `json:"speed,omitempty"`
}
