package hub_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/skylink-gcs/groundlink/hub"
	"github.com/skylink-gcs/groundlink/wire"
)

func TestReceipt_ResolvedToErrorWithTokenPrefixStripped(t *testing.T) {
	h, srv := newTestHub(t, fastConfig(), func(cmd *wire.Message) []*wire.Message {
		switch cmd.Type {
		case wire.TypeReceiptQuery:
			return []*wire.Message{responseTo(cmd, wire.ResponseBody{
				Error: map[string]string{"tok1": "tok1: battery low"},
			})}
		default:
			return []*wire.Message{responseTo(cmd, wire.ResponseBody{
				Receipt: map[string]string{"a": "tok1"},
			})}
		}
	})

	outcomes, err := h.SendCommand(context.Background(), wire.TypeFly, []string{"a"}, nil)
	if err != nil {
		t.Fatalf("SendCommand() error = %v", err)
	}

	f := outcomes["a"].Failure()
	if f == nil || f.Kind != hub.FailureTarget {
		t.Fatalf("outcome = %v, want target failure", outcomes["a"])
	}
	if f.Reason != "battery low" {
		t.Errorf("reason = %q, want battery low", f.Reason)
	}

	if srv.countType(wire.TypeReceiptQuery) == 0 {
		t.Error("no poll request issued for the receipt")
	}

	// After resolution no waiters remain; polling goes quiet.
	polls := srv.countType(wire.TypeReceiptQuery)
	time.Sleep(100 * time.Millisecond)
	if again := srv.countType(wire.TypeReceiptQuery); again != polls {
		t.Errorf("polls continued after resolution: %d -> %d", polls, again)
	}
}

func TestReceipt_ResolvedToResult(t *testing.T) {
	h, _ := newTestHub(t, fastConfig(), func(cmd *wire.Message) []*wire.Message {
		switch cmd.Type {
		case wire.TypeReceiptQuery:
			return []*wire.Message{responseTo(cmd, wire.ResponseBody{
				Result: map[string]any{"tok1": "landed"},
			})}
		default:
			return []*wire.Message{responseTo(cmd, wire.ResponseBody{
				Receipt: map[string]string{"a": "tok1"},
			})}
		}
	})

	outcomes, err := h.SendCommand(context.Background(), wire.TypeLand, []string{"a"}, nil)
	if err != nil {
		t.Fatalf("SendCommand() error = %v", err)
	}
	if v := outcomes["a"].Value(); v != "landed" {
		t.Errorf("outcome = %v, want landed", outcomes["a"])
	}
	if h.Metrics().ReceiptsResolved != 1 {
		t.Errorf("ReceiptsResolved = %d, want 1", h.Metrics().ReceiptsResolved)
	}
}

func TestReceipt_PendingTokenKeepsWaiterAlive(t *testing.T) {
	// The first two polls re-report the token; the third resolves it.
	var pollMu sync.Mutex
	pollCount := 0

	h, _ := newTestHub(t, fastConfig(), func(cmd *wire.Message) []*wire.Message {
		switch cmd.Type {
		case wire.TypeReceiptQuery:
			pollMu.Lock()
			pollCount++
			n := pollCount
			pollMu.Unlock()
			if n < 3 {
				return []*wire.Message{responseTo(cmd, wire.ResponseBody{
					Receipt: map[string]string{"tok1": "tok1"},
				})}
			}
			return []*wire.Message{responseTo(cmd, wire.ResponseBody{
				Result: map[string]any{"tok1": true},
			})}
		default:
			return []*wire.Message{responseTo(cmd, wire.ResponseBody{
				Receipt: map[string]string{"a": "tok1"},
			})}
		}
	})

	outcomes, err := h.SendCommand(context.Background(), wire.TypeReturnHome, []string{"a"}, nil)
	if err != nil {
		t.Fatalf("SendCommand() error = %v", err)
	}
	if v := outcomes["a"].Value(); v != true {
		t.Errorf("outcome = %v, want true", outcomes["a"])
	}

	pollMu.Lock()
	defer pollMu.Unlock()
	if pollCount < 3 {
		t.Errorf("pollCount = %d, want at least 3", pollCount)
	}
}

func TestReceipt_PollRejectionRetriesNextTick(t *testing.T) {
	var pollMu sync.Mutex
	pollCount := 0

	h, _ := newTestHub(t, fastConfig(), func(cmd *wire.Message) []*wire.Message {
		switch cmd.Type {
		case wire.TypeReceiptQuery:
			pollMu.Lock()
			pollCount++
			n := pollCount
			pollMu.Unlock()
			if n == 1 {
				return []*wire.Message{rejectionTo(cmd, "not ready")}
			}
			return []*wire.Message{responseTo(cmd, wire.ResponseBody{
				Result: map[string]any{"tok1": "done"},
			})}
		default:
			return []*wire.Message{responseTo(cmd, wire.ResponseBody{
				Receipt: map[string]string{"a": "tok1"},
			})}
		}
	})

	outcomes, err := h.SendCommand(context.Background(), wire.TypeHalt, []string{"a"}, nil)
	if err != nil {
		t.Fatalf("SendCommand() error = %v", err)
	}
	if v := outcomes["a"].Value(); v != "done" {
		t.Errorf("outcome = %v, want done", outcomes["a"])
	}
}

func TestReceipt_BatchedPollCoversAllOutstandingTokens(t *testing.T) {
	// Two targets, two tokens; one poll resolves both from a single batch.
	h, srv := newTestHub(t, fastConfig(), func(cmd *wire.Message) []*wire.Message {
		switch cmd.Type {
		case wire.TypeReceiptQuery:
			var q wire.ReceiptQueryBody
			if err := cmd.DecodeBody(&q); err != nil || len(q.Receipts) != 2 {
				// Poll did not batch both tokens; let the command time out.
				return nil
			}
			return []*wire.Message{responseTo(cmd, wire.ResponseBody{
				Result: map[string]any{"tokA": "okA", "tokB": "okB"},
			})}
		default:
			return []*wire.Message{responseTo(cmd, wire.ResponseBody{
				Receipt: map[string]string{"a": "tokA", "b": "tokB"},
			})}
		}
	})

	outcomes, err := h.SendCommand(context.Background(), wire.TypeFly, []string{"a", "b"}, nil)
	if err != nil {
		t.Fatalf("SendCommand() error = %v", err)
	}
	if outcomes["a"].Value() != "okA" || outcomes["b"].Value() != "okB" {
		t.Errorf("outcomes = %v", outcomes)
	}
	if srv.countType(wire.TypeReceiptQuery) != 1 {
		t.Errorf("polls = %d, want 1 batched poll", srv.countType(wire.TypeReceiptQuery))
	}
}
