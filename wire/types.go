package wire

// Type is a 7-character message type mnemonic.
type Type string

// Drone command tags. Responses to these tags may resolve a target through a
// receipt instead of an immediate result.
const (
	TypeObjectCommand Type = "OBJ-CMD" // free-form command addressed to tracked objects
	TypeFly           Type = "CMD-FLY"
	TypeHalt          Type = "CMD-HLT"
	TypeLand          Type = "CMD-LND"
	TypeResetHome     Type = "CMD-RSH"
	TypeReturnHome    Type = "CMD-RTH"
	TypeSignal        Type = "CMD-SIG"
	TypeTakeoff       Type = "CMD-TKO"
)

// Control and query tags.
const (
	TypeRejected     Type = "ACK-NAK" // whole-command rejection
	TypeReceiptQuery Type = "RCP-QRY" // poll for outstanding receipt tokens
	TypeStatusQuery  Type = "STA-QRY"
	TypeStatusReply  Type = "STA-RSP"
	TypeHeartbeat    Type = "HRT-BEA"
)

// Notification tags emitted by the server without a correlation id.
const (
	TypeSystemMessage Type = "SYS-MSG"
	TypeClockInfo     Type = "CLK-INF"
	TypeLinkState     Type = "CON-STA"
	TypeObjectDelete  Type = "OBJ-DEL"
	TypePosition      Type = "POS-INF"
)

// receiptBearing is the closed allow-list of command tags whose responses
// carry per-target error/result/receipt maps. Adding or removing a tag here
// is the single change needed to grow or shrink the family.
var receiptBearing = map[Type]bool{
	TypeObjectCommand: true,
	TypeFly:           true,
	TypeHalt:          true,
	TypeLand:          true,
	TypeResetHome:     true,
	TypeReturnHome:    true,
	TypeSignal:        true,
	TypeTakeoff:       true,
}

// ReceiptBearing reports whether responses tagged t carry per-target
// error/result/receipt maps.
func ReceiptBearing(t Type) bool {
	return receiptBearing[t]
}
