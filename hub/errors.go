package hub

import (
	"errors"
	"fmt"

	"github.com/skylink-gcs/groundlink/wire"
)

// Sentinel errors for caller mistakes and query inconsistencies.
var (
	// ErrNoTargets is returned by SendCommand when the target set is empty.
	ErrNoTargets = errors.New("command addresses no targets")
	// ErrStatusInconsistent is returned by ExtractStatus when a status
	// response populates neither the status nor the error map for a
	// requested id.
	ErrStatusInconsistent = errors.New("status response has neither status nor error entry")
)

// FailureKind classifies the heterogeneous failure shapes the server reports
// into a fixed taxonomy.
type FailureKind int

const (
	// FailureRejected: the server refused to execute the whole command.
	FailureRejected FailureKind = iota
	// FailureTarget: the command failed on one specific target.
	FailureTarget
	// FailureMissingOutcome: the server acknowledged the command type but
	// reported neither error, result, nor receipt for a target. A contract
	// violation, distinct from a timeout.
	FailureMissingOutcome
	// FailureTimeout: the client-side deadline elapsed before the target
	// resolved.
	FailureTimeout
	// FailureUnsupported: the response type is not in the receipt-bearing
	// allow-list and cannot carry per-target outcomes.
	FailureUnsupported
	// FailureDisconnected: the transport refused the send.
	FailureDisconnected
)

func (k FailureKind) String() string {
	switch k {
	case FailureRejected:
		return "rejected"
	case FailureTarget:
		return "target-failed"
	case FailureMissingOutcome:
		return "missing-outcome"
	case FailureTimeout:
		return "timeout"
	case FailureUnsupported:
		return "unsupported"
	case FailureDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Failure is a classified command failure. Error() returns only the reason so
// server-reported strings surface verbatim to callers; the kind is available
// on the struct.
type Failure struct {
	Kind   FailureKind
	Reason string
}

func (f *Failure) Error() string {
	return f.Reason
}

// Default reasons for failure shapes the server leaves empty.
const (
	reasonRejectedDefault = "rejected, no reason given"
	reasonTargetDefault   = "command failed, no reason given"
	reasonTimeout         = "timeout"
	reasonMissingOutcome  = "protocol violation: no outcome reported"
)

func rejectedFailure(reason string) *Failure {
	if reason == "" {
		reason = reasonRejectedDefault
	}
	return &Failure{Kind: FailureRejected, Reason: reason}
}

func targetFailure(reason string) *Failure {
	if reason == "" {
		reason = reasonTargetDefault
	}
	return &Failure{Kind: FailureTarget, Reason: reason}
}

func missingOutcomeFailure(key string) *Failure {
	return &Failure{
		Kind:   FailureMissingOutcome,
		Reason: fmt.Sprintf("no error, result, or receipt reported for %q", key),
	}
}

func timeoutFailure() *Failure {
	return &Failure{Kind: FailureTimeout, Reason: reasonTimeout}
}

func unsupportedFailure(t wire.Type) *Failure {
	return &Failure{
		Kind:   FailureUnsupported,
		Reason: fmt.Sprintf("message type %s does not carry per-target outcomes", t),
	}
}

func disconnectedFailure(err error) *Failure {
	return &Failure{Kind: FailureDisconnected, Reason: err.Error()}
}
