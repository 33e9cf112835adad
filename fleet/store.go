// Package fleet maintains the ground station's view of the drone fleet. The
// Store is fed by the notification handlers in Handlers and optionally
// persists last-known state through a snapshot cache so a restarted daemon
// recalls the fleet it was tracking.
package fleet

import (
	"context"
	"encoding/json"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/skylink-gcs/groundlink/snapshot"
	"github.com/skylink-gcs/groundlink/wire"
)

const droneKeyPrefix = "drones/"

// Position is a drone's last reported telemetry fix.
type Position struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Altitude  float64 `json:"alt"`
	Heading   float64 `json:"heading,omitempty"`
	Speed     float64 `json:"speed,omitempty"`
}

// Drone is the tracked state of one fleet member.
type Drone struct {
	ID       string    `json:"id"`
	Position Position  `json:"position"`
	LinkUp   bool      `json:"link_up"`
	LastSeen time.Time `json:"last_seen"`
}

// Store is the in-memory fleet model. All methods are safe for concurrent
// use. The snapshot cache is optional; a nil cache means state lives only in
// memory.
type Store struct {
	mu     sync.RWMutex
	drones map[string]*Drone
	// offset is server clock minus local clock, from the latest CLK-INF.
	offset time.Duration
	cache  *snapshot.Cache
}

// NewStore creates an empty Store. Pass a nil cache to disable persistence.
func NewStore(cache *snapshot.Cache) *Store {
	return &Store{
		drones: make(map[string]*Drone),
		cache:  cache,
	}
}

// Restore bootstraps the snapshot cache and rebuilds the fleet from
// persisted drone records. Records that fail to decode are skipped; a stale
// snapshot must not prevent startup. No-op without a cache.
func (s *Store) Restore(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Bootstrap(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range s.cache.Keys() {
		if !keyIsDrone(key) {
			continue
		}
		data, ok := s.cache.Get(key)
		if !ok {
			continue
		}
		var d Drone
		if err := json.Unmarshal(data, &d); err != nil || d.ID == "" {
			continue
		}
		s.drones[d.ID] = &d
	}
	return nil
}

// Flush writes dirty drone records to the snapshot store. No-op without a
// cache.
func (s *Store) Flush(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Flush(ctx)
}

// UpdatePosition applies a POS-INF fix, creating the drone on first sight.
func (s *Store) UpdatePosition(body wire.PositionBody) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.ensure(body.ID)
	d.Position = Position{
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
		Altitude:  body.Altitude,
		Heading:   body.Heading,
		Speed:     body.Speed,
	}
	d.LastSeen = time.Now()
	s.persist(d)
}

// SetLink applies a CON-STA link transition, creating the drone on first
// sight.
func (s *Store) SetLink(id string, connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.ensure(id)
	d.LinkUp = connected
	d.LastSeen = time.Now()
	s.persist(d)
}

// Remove drops a drone from the fleet and schedules its snapshot record for
// deletion. Removing an unknown id is a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drones[id]; !ok {
		return
	}
	delete(s.drones, id)
	if s.cache != nil {
		s.cache.Delete(droneKey(id))
	}
}

// SetClock records the server clock from a CLK-INF notification. serverTime
// is unix milliseconds.
func (s *Store) SetClock(serverTime int64) {
	offset := time.Until(time.UnixMilli(serverTime))

	s.mu.Lock()
	s.offset = offset
	s.mu.Unlock()
}

// ClockOffset returns server clock minus local clock.
func (s *Store) ClockOffset() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offset
}

// ServerNow returns the current time on the server clock.
func (s *Store) ServerNow() time.Time {
	return time.Now().Add(s.ClockOffset())
}

// Drone returns a copy of the tracked state for id.
func (s *Store) Drone(id string) (Drone, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drones[id]
	if !ok {
		return Drone{}, false
	}
	return *d, true
}

// Drones returns copies of all tracked drones, sorted by id.
func (s *Store) Drones() []Drone {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Drone, 0, len(s.drones))
	for _, d := range s.drones {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// IDs returns the tracked drone ids, sorted.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.drones))
	for id := range s.drones {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ensure returns the drone for id, creating it if unseen. Caller holds mu.
func (s *Store) ensure(id string) *Drone {
	d, ok := s.drones[id]
	if !ok {
		d = &Drone{ID: id}
		s.drones[id] = d
	}
	return d
}

// persist marks the drone's snapshot record dirty. Caller holds mu.
func (s *Store) persist(d *Drone) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(d)
	if err != nil {
		return
	}
	s.cache.Set(droneKey(d.ID), data)
}

func droneKey(id string) string {
	return droneKeyPrefix + id + ".json"
}

func keyIsDrone(key string) bool {
	return path.Dir(key) == "drones"
}
