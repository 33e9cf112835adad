package hub

import "fmt"

// OutcomeKind discriminates the three states a target outcome can be in.
type OutcomeKind int

const (
	OutcomeResult OutcomeKind = iota
	OutcomeError
	OutcomeReceipt
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeResult:
		return "result"
	case OutcomeError:
		return "error"
	case OutcomeReceipt:
		return "receipt"
	default:
		return "unknown"
	}
}

// Outcome is the tagged union {Result, Error, Receipt} for one target of one
// command. Exactly one variant is populated; construction goes through the
// three constructors so the invariant holds by type. SendCommand only ever
// returns terminal outcomes; a Receipt exists only inside the resolution
// machinery.
type Outcome struct {
	kind    OutcomeKind
	value   any
	failure *Failure
	token   string
}

// ResultOutcome wraps a successful per-target result value.
func ResultOutcome(value any) Outcome {
	return Outcome{kind: OutcomeResult, value: value}
}

// ErrorOutcome wraps a classified per-target failure.
func ErrorOutcome(f *Failure) Outcome {
	return Outcome{kind: OutcomeError, failure: f}
}

// ReceiptOutcome wraps a receipt token standing in for a not-yet-known
// outcome.
func ReceiptOutcome(token string) Outcome {
	return Outcome{kind: OutcomeReceipt, token: token}
}

func (o Outcome) Kind() OutcomeKind { return o.kind }

// Value returns the result value; nil unless Kind is OutcomeResult.
func (o Outcome) Value() any { return o.value }

// Err returns the failure; nil unless Kind is OutcomeError.
func (o Outcome) Err() error {
	if o.failure == nil {
		return nil
	}
	return o.failure
}

// Failure returns the typed failure; nil unless Kind is OutcomeError.
func (o Outcome) Failure() *Failure { return o.failure }

// Token returns the receipt token; empty unless Kind is OutcomeReceipt.
func (o Outcome) Token() string { return o.token }

// Terminal reports whether the outcome is a Result or an Error. A Receipt is
// the only non-terminal state and may only ever transition forward.
func (o Outcome) Terminal() bool {
	return o.kind != OutcomeReceipt
}

func (o Outcome) String() string {
	switch o.kind {
	case OutcomeResult:
		return fmt.Sprintf("Result(%v)", o.value)
	case OutcomeError:
		return fmt.Sprintf("Error(%s)", o.failure.Reason)
	default:
		return fmt.Sprintf("Receipt(%s)", o.token)
	}
}
