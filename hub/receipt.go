package hub

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/skylink-gcs/groundlink/observability"
	"github.com/skylink-gcs/groundlink/wire"
)

// resolution carries one target's terminal outcome from the resolver back to
// the command that owns it.
type resolution struct {
	target  string
	outcome Outcome
}

// receiptWaiter tracks one outstanding receipt token. It is created when a
// response resolves a target to Receipt and destroyed when the token
// resolves or the owning command settles.
type receiptWaiter struct {
	token    string
	target   string
	cid      string
	attempts int
	resolved chan<- resolution
}

// receiptResolver drives every Receipt outcome to a terminal Result or
// Error. It batches all outstanding tokens into one RCP-QRY per tick and
// runs the response back through the extraction maps keyed by token.
type receiptResolver struct {
	hub *Hub

	mu      sync.Mutex
	waiters map[string]*receiptWaiter

	kick chan struct{}
	done chan struct{}

	interval    time.Duration
	pollTimeout time.Duration
	maxEmpty    int
	backoffMax  time.Duration
	limiter     *rate.Limiter
}

func newReceiptResolver(h *Hub, cfg Config) *receiptResolver {
	return &receiptResolver{
		hub:         h,
		waiters:     make(map[string]*receiptWaiter),
		kick:        make(chan struct{}, 1),
		done:        make(chan struct{}),
		interval:    cfg.PollInterval,
		pollTimeout: cfg.PollTimeout,
		maxEmpty:    cfg.MaxEmptyPolls,
		backoffMax:  cfg.PollBackoffMax,
		limiter:     rate.NewLimiter(rate.Limit(cfg.PollRate), cfg.PollBurst),
	}
}

func (r *receiptResolver) add(w *receiptWaiter) {
	r.mu.Lock()
	r.waiters[w.token] = w
	r.mu.Unlock()

	select {
	case r.kick <- struct{}{}:
	default:
	}
}

// dropCommand removes every waiter belonging to the given command. Called
// when the command settles, times out, or is cancelled; no further poll
// traffic mentions its tokens.
func (r *receiptResolver) dropCommand(cid string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token, w := range r.waiters {
		if w.cid == cid {
			delete(r.waiters, token)
		}
	}
}

func (r *receiptResolver) outstanding() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokens := make([]string, 0, len(r.waiters))
	for token := range r.waiters {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// run is the polling loop. It sleeps while no waiters exist, polls on a
// fixed interval otherwise, and doubles the interval (up to backoffMax)
// after maxEmpty consecutive polls that resolved nothing. A transport-level
// poll failure resolves no waiter; the next tick retries.
func (r *receiptResolver) run(ctx context.Context) {
	defer close(r.done)

	interval := r.interval
	empty := 0

	for {
		if len(r.outstanding()) == 0 {
			select {
			case <-ctx.Done():
				return
			case <-r.kick:
				interval, empty = r.interval, 0
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}

		if !r.limiter.Allow() {
			continue
		}

		resolved, err := r.pollOnce(ctx)
		if err != nil || resolved == 0 {
			empty++
			if empty >= r.maxEmpty {
				interval = min(interval*2, r.backoffMax)
			}
			continue
		}
		interval, empty = r.interval, 0
	}
}

func (r *receiptResolver) pollOnce(ctx context.Context) (int, error) {
	tokens := r.outstanding()
	if len(tokens) == 0 {
		return 0, nil
	}

	msg, err := wire.NewCommand(wire.TypeReceiptQuery, wire.ReceiptQueryBody{Receipts: tokens})
	if err != nil {
		return 0, err
	}

	responses := r.hub.await(msg.CID)
	defer r.hub.unawait(msg.CID)

	if err := r.hub.adapter.Send(msg); err != nil {
		r.hub.emit(EventReceiptPoll, observability.LevelWarning, map[string]any{
			"error": err.Error(),
		})
		return 0, err
	}

	r.hub.metrics.RecordPollSent(1)
	r.hub.emit(EventReceiptPoll, observability.LevelVerbose, map[string]any{
		"tokens": len(tokens),
	})

	timer := time.NewTimer(r.pollTimeout)
	defer timer.Stop()

	select {
	case resp := <-responses:
		return r.applyPoll(resp, tokens), nil
	case <-timer.C:
		return 0, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// applyPoll resolves polled tokens against the response body. Error entries
// on polls prefix the reason with the token; the prefix is stripped before
// delivery. Tokens the server has not resolved yet, re-reported receipts or
// simply absent, keep their waiter alive; only the owning command's
// deadline ends that wait.
func (r *receiptResolver) applyPoll(resp *wire.Message, polled []string) int {
	if resp.Type == wire.TypeRejected {
		// the poll itself was refused; retry on the next tick
		return 0
	}

	var body wire.ResponseBody
	if err := resp.DecodeBody(&body); err != nil {
		r.hub.notice(fmt.Sprintf("malformed receipt poll response: %v", err))
		return 0
	}

	resolved := 0
	for _, token := range polled {
		r.mu.Lock()
		w, ok := r.waiters[token]
		r.mu.Unlock()
		if !ok {
			// owning command settled or was cancelled meanwhile
			continue
		}

		o := outcomeFromBody(&body, token)
		if !o.Terminal() || (o.Failure() != nil && o.Failure().Kind == FailureMissingOutcome) {
			r.mu.Lock()
			w.attempts++
			r.mu.Unlock()
			continue
		}

		if f := o.Failure(); f != nil && f.Kind == FailureTarget {
			o = ErrorOutcome(targetFailure(strings.TrimPrefix(f.Reason, token+": ")))
		}

		r.mu.Lock()
		delete(r.waiters, token)
		r.mu.Unlock()

		w.resolved <- resolution{target: w.target, outcome: o}
		resolved++

		r.hub.metrics.RecordReceiptResolved(1)
		r.hub.emit(EventReceiptResolved, observability.LevelVerbose, map[string]any{
			"cid":    w.cid,
			"target": w.target,
		})
	}

	return resolved
}
