package hub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skylink-gcs/groundlink/observability"
	"github.com/skylink-gcs/groundlink/wire"
)

// SendOption customizes one SendCommand or QueryStatus call.
type SendOption func(*sendOptions)

type sendOptions struct {
	timeout time.Duration
}

// WithTimeout bounds the call end to end, receipt polling included.
func WithTimeout(d time.Duration) SendOption {
	return func(o *sendOptions) { o.timeout = d }
}

// SendCommand transmits a command addressed to the given targets and blocks
// until every target's outcome is terminal or the deadline fires. The
// returned map has exactly one Result or Error outcome per target, never a
// raw Receipt.
//
// On timeout, targets still unresolved receive an Error(timeout) outcome and
// the call returns the partial map with a nil error; some targets may have
// genuinely succeeded before the deadline. Cancelling ctx removes the pending
// command and its receipt waiters immediately and returns the outcomes
// gathered so far alongside the context error.
//
// SendCommand suspends only its caller. Inbound processing continues while
// any number of commands are pending, and responses are matched strictly by
// correlation id, so concurrent commands may resolve out of send order.
func (h *Hub) SendCommand(ctx context.Context, t wire.Type, targets []string, payload any, opts ...SendOption) (map[string]Outcome, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	options := sendOptions{timeout: h.defaultTimeout}
	for _, opt := range opts {
		opt(&options)
	}

	msg, err := wire.NewCommand(t, wire.CommandBody{Targets: targets, Payload: payload})
	if err != nil {
		return nil, err
	}

	responses := h.await(msg.CID)
	defer h.unawait(msg.CID)
	defer h.receipts.dropCommand(msg.CID)

	if err := h.adapter.Send(msg); err != nil {
		return nil, fmt.Errorf("send %s command: %w", t, disconnectedFailure(err))
	}

	h.metrics.RecordCommandSent(1)
	h.emit(EventCommandSent, observability.LevelVerbose, map[string]any{
		"type":    t,
		"cid":     msg.CID,
		"targets": len(targets),
	})

	outcomes := make(map[string]Outcome, len(targets))
	remaining := make(map[string]bool, len(targets))
	for _, id := range targets {
		remaining[id] = true
	}
	resolved := make(chan resolution, len(targets))

	timer := time.NewTimer(options.timeout)
	defer timer.Stop()

	for len(remaining) > 0 {
		select {
		case resp := <-responses:
			h.applyResponse(resp, msg.CID, outcomes, remaining, resolved)

		case r := <-resolved:
			// Receipt outcomes transition to Result/Error exactly once;
			// targets already terminal are never overwritten.
			if remaining[r.target] {
				outcomes[r.target] = r.outcome
				delete(remaining, r.target)
			}

		case <-timer.C:
			for id := range remaining {
				outcomes[id] = ErrorOutcome(timeoutFailure())
				delete(remaining, id)
			}

		case <-ctx.Done():
			return outcomes, ctx.Err()

		case <-h.ctx.Done():
			return outcomes, h.ctx.Err()
		}
	}

	h.metrics.RecordCommandSettled(1)
	h.emit(EventCommandSettled, observability.LevelVerbose, map[string]any{
		"type": t,
		"cid":  msg.CID,
	})

	return outcomes, nil
}

// applyResponse runs a direct response through the extractor for every
// still-unresolved target. Rejections and non-receipt-bearing types fail all
// targets identically; receipts hand the target over to the resolution loop;
// a missing outcome is reported through the notice channel and surfaced as a
// target failure so the rest of the command keeps its partial result.
func (h *Hub) applyResponse(resp *wire.Message, cid string, outcomes map[string]Outcome, remaining map[string]bool, resolved chan<- resolution) {
	var body wire.ResponseBody
	if err := resp.DecodeBody(&body); err != nil {
		h.metrics.RecordProtocolViolation(1)
		h.notice(fmt.Sprintf("malformed %s response: %v", resp.Type, err))
		return
	}

	for id := range remaining {
		o := extractOutcome(resp.Type, &body, id)

		switch {
		case o.Kind() == OutcomeReceipt:
			h.receipts.add(&receiptWaiter{
				token:    o.Token(),
				target:   id,
				cid:      cid,
				resolved: resolved,
			})
			h.emit(EventReceiptWait, observability.LevelVerbose, map[string]any{
				"cid":    cid,
				"target": id,
			})

		case o.Failure() != nil && o.Failure().Kind == FailureMissingOutcome:
			h.metrics.RecordProtocolViolation(1)
			h.notice(fmt.Sprintf("%s response for %s: %s", resp.Type, cid, o.Failure().Reason))
			h.emit(EventProtocolViolation, observability.LevelWarning, map[string]any{
				"cid":    cid,
				"target": id,
			})
			outcomes[id] = ErrorOutcome(&Failure{Kind: FailureTarget, Reason: reasonMissingOutcome})
			delete(remaining, id)

		default:
			outcomes[id] = o
			delete(remaining, id)
		}
	}
}

// StatusResult is one queried id's answer from QueryStatus.
type StatusResult struct {
	Value any
	Err   error
}

// QueryStatus asks the server for the current state of the given ids and
// resolves each through the status extraction path. The whole query fails on
// rejection or timeout; per-id inconsistencies are reported through the
// notice channel and recorded in the returned map.
func (h *Hub) QueryStatus(ctx context.Context, ids []string, opts ...SendOption) (map[string]StatusResult, error) {
	if len(ids) == 0 {
		return nil, ErrNoTargets
	}

	options := sendOptions{timeout: h.defaultTimeout}
	for _, opt := range opts {
		opt(&options)
	}

	msg, err := wire.NewCommand(wire.TypeStatusQuery, wire.StatusQueryBody{IDs: ids})
	if err != nil {
		return nil, err
	}

	responses := h.await(msg.CID)
	defer h.unawait(msg.CID)

	if err := h.adapter.Send(msg); err != nil {
		return nil, fmt.Errorf("send status query: %w", disconnectedFailure(err))
	}

	timer := time.NewTimer(options.timeout)
	defer timer.Stop()

	select {
	case resp := <-responses:
		if resp.Type == wire.TypeRejected {
			var body wire.ResponseBody
			if err := resp.DecodeBody(&body); err != nil {
				return nil, fmt.Errorf("malformed rejection: %w", err)
			}
			return nil, rejectedFailure(body.Reason)
		}

		var body wire.StatusBody
		if err := resp.DecodeBody(&body); err != nil {
			return nil, fmt.Errorf("malformed status response: %w", err)
		}

		results := make(map[string]StatusResult, len(ids))
		for _, id := range ids {
			value, err := ExtractStatus(&body, id)
			if errors.Is(err, ErrStatusInconsistent) {
				h.metrics.RecordProtocolViolation(1)
				h.notice(fmt.Sprintf("status response: %v", err))
			}
			results[id] = StatusResult{Value: value, Err: err}
		}
		return results, nil

	case <-timer.C:
		return nil, timeoutFailure()

	case <-ctx.Done():
		return nil, ctx.Err()

	case <-h.ctx.Done():
		return nil, h.ctx.Err()
	}
}
