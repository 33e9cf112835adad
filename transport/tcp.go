package transport

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/skylink-gcs/groundlink/wire"
)

// Config holds TCP adapter tunables.
type Config struct {
	// HeartbeatInterval is the cadence of HRT-BEA frames keeping the
	// connection alive. Zero means the default; negative disables the
	// heartbeat.
	HeartbeatInterval time.Duration
	// MaxFrameBytes bounds one inbound frame.
	MaxFrameBytes int
}

// DefaultConfig returns the default TCP adapter configuration.
func DefaultConfig() Config {
	return Config{
		HeartbeatInterval: 30 * time.Second,
		MaxFrameBytes:     1 << 20,
	}
}

func (c *Config) Merge(source *Config) {
	if source.HeartbeatInterval != 0 {
		c.HeartbeatInterval = source.HeartbeatInterval
	}
	if source.MaxFrameBytes > 0 {
		c.MaxFrameBytes = source.MaxFrameBytes
	}
}

// TCP is an Adapter over one TCP connection speaking newline-delimited JSON
// frames. Reading does not start until SetListener is called, so no inbound
// message can arrive before the hub is attached.
type TCP struct {
	conn      net.Conn
	cfg       Config
	writeMu   sync.Mutex // one frame at a time; interleaved writes corrupt the stream
	startOnce sync.Once
	listener  func(*wire.Message)
	closed    atomic.Bool
	done      chan struct{}
}

// Dial connects to the swarm server at addr.
func Dial(addr string, cfg Config) (*TCP, error) {
	merged := DefaultConfig()
	merged.Merge(&cfg)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewTCP(conn, merged), nil
}

// NewTCP wraps an established connection. Useful for tests over net.Pipe.
func NewTCP(conn net.Conn, cfg Config) *TCP {
	merged := DefaultConfig()
	merged.Merge(&cfg)

	return &TCP{
		conn: conn,
		cfg:  merged,
		done: make(chan struct{}),
	}
}

// Send writes one frame. Returns ErrNotConnected once the connection is
// closed or broken.
func (t *TCP) Send(msg *wire.Message) error {
	if t.closed.Load() {
		return ErrNotConnected
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	data = append(data, '\n')

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := t.conn.Write(data); err != nil {
		t.shutdown()
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	return nil
}

// SetListener registers the single arrival callback and starts the read and
// heartbeat loops. Later calls are ignored; the first listener holds for the
// adapter's lifetime.
func (t *TCP) SetListener(fn func(*wire.Message)) {
	t.startOnce.Do(func() {
		t.listener = fn
		go t.recvLoop()
		if t.cfg.HeartbeatInterval > 0 {
			go t.heartbeatLoop()
		}
	})
}

// Done is closed when the connection is gone and the read loop has exited.
func (t *TCP) Done() <-chan struct{} {
	return t.done
}

// Close tears down the connection. Safe to call more than once.
func (t *TCP) Close() error {
	t.shutdown()
	return nil
}

func (t *TCP) shutdown() {
	if t.closed.CompareAndSwap(false, true) {
		t.conn.Close()
	}
}

// recvLoop reads frames sequentially and hands each to the listener. Frames
// that fail to parse are skipped; a well-behaved server never sends them and
// one bad frame must not cost the connection.
func (t *TCP) recvLoop() {
	defer close(t.done)
	defer t.shutdown()

	scanner := bufio.NewScanner(t.conn)
	scanner.Buffer(make([]byte, 64*1024), t.cfg.MaxFrameBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg wire.Message
		if err := json.Unmarshal(line, &msg); err != nil {
			continue
		}
		t.listener(&msg)
	}
}

func (t *TCP) heartbeatLoop() {
	ticker := time.NewTicker(t.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for range ticker.C {
		if err := t.Send(&wire.Message{Type: wire.TypeHeartbeat}); err != nil {
			return
		}
	}
}
