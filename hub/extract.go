package hub

import (
	"fmt"

	"github.com/skylink-gcs/groundlink/wire"
)

// extractOutcome determines one target's immediate outcome from a direct
// command response. The decision is driven by the response's declared type:
// a rejection fails every target with the message-level reason, a type inside
// the receipt-bearing allow-list is consulted per target, and anything else
// is a protocol-level Unsupported failure.
func extractOutcome(t wire.Type, body *wire.ResponseBody, target string) Outcome {
	if t == wire.TypeRejected {
		return ErrorOutcome(rejectedFailure(body.Reason))
	}
	if !wire.ReceiptBearing(t) {
		return ErrorOutcome(unsupportedFailure(t))
	}
	return outcomeFromBody(body, target)
}

// outcomeFromBody resolves one key against the error/result/receipt maps of
// a receipt-bearing response body. The key is a target id on a direct
// response and a receipt token on a poll response. Precedence is
// error, then result, then receipt; a key in none of the three is a
// server contract violation (FailureMissingOutcome), not a timeout.
func outcomeFromBody(body *wire.ResponseBody, key string) Outcome {
	if reason, ok := body.Error[key]; ok {
		return ErrorOutcome(targetFailure(reason))
	}
	if value, ok := body.Result[key]; ok {
		return ResultOutcome(value)
	}
	if token, ok := body.Receipt[key]; ok {
		return ReceiptOutcome(token)
	}
	return ErrorOutcome(missingOutcomeFailure(key))
}

// ExtractStatus resolves one queried id against a status-style response
// body. Exactly one of the status/error maps must carry an entry for the id:
// a status entry is returned as the value, an error entry fails with the
// string reason (or a generic message when the entry is structured), and an
// id in neither map reports ErrStatusInconsistent.
func ExtractStatus(body *wire.StatusBody, id string) (any, error) {
	if value, ok := body.Status[id]; ok {
		return value, nil
	}
	if reason, ok := body.Error[id]; ok {
		if s, isString := reason.(string); isString {
			return nil, targetFailure(s)
		}
		return nil, targetFailure(fmt.Sprintf("status query failed for %q", id))
	}
	return nil, fmt.Errorf("%w: %s", ErrStatusInconsistent, id)
}
