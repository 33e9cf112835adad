package fleet_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/skylink-gcs/groundlink/fleet"
	"github.com/skylink-gcs/groundlink/wire"
)

func TestHandlers_CoversNotificationTags(t *testing.T) {
	handlers := fleet.Handlers(fleet.NewStore(nil), nil)

	for _, tag := range []wire.Type{
		wire.TypeClockInfo,
		wire.TypeLinkState,
		wire.TypeObjectDelete,
		wire.TypePosition,
		wire.TypeSystemMessage,
	} {
		if handlers[tag] == nil {
			t.Errorf("no handler for %s", tag)
		}
	}
}

func TestHandlers_PositionUpdatesStore(t *testing.T) {
	store := fleet.NewStore(nil)
	handlers := fleet.Handlers(store, nil)

	var gotAction string
	var gotData any
	dispatch := func(action string, data any) {
		gotAction, gotData = action, data
	}

	body, _ := json.Marshal(wire.PositionBody{ID: "alpha", Latitude: 10, Longitude: 20})
	handlers[wire.TypePosition](body, dispatch)

	d, ok := store.Drone("alpha")
	if !ok {
		t.Fatal("drone not created by POS-INF handler")
	}
	if d.Position.Latitude != 10 {
		t.Errorf("latitude = %v, want 10", d.Position.Latitude)
	}
	if gotAction != fleet.ActionFleetChanged || gotData != "alpha" {
		t.Errorf("dispatch = (%q, %v), want (%q, alpha)", gotAction, gotData, fleet.ActionFleetChanged)
	}
}

func TestHandlers_LinkStateAndDelete(t *testing.T) {
	store := fleet.NewStore(nil)
	handlers := fleet.Handlers(store, nil)
	dispatch := func(string, any) {}

	up, _ := json.Marshal(wire.LinkStateBody{ID: "alpha", Connected: true})
	handlers[wire.TypeLinkState](up, dispatch)
	if d, _ := store.Drone("alpha"); !d.LinkUp {
		t.Error("LinkUp = false after CON-STA connected")
	}

	del, _ := json.Marshal(wire.ObjectDeleteBody{ID: "alpha"})
	handlers[wire.TypeObjectDelete](del, dispatch)
	if _, ok := store.Drone("alpha"); ok {
		t.Error("drone still tracked after OBJ-DEL")
	}
}

func TestHandlers_SystemMessageDispatches(t *testing.T) {
	handlers := fleet.Handlers(fleet.NewStore(nil), nil)

	var got wire.SystemMessageBody
	dispatch := func(action string, data any) {
		if action != fleet.ActionSystemMessage {
			t.Errorf("action = %q, want %q", action, fleet.ActionSystemMessage)
		}
		got = data.(wire.SystemMessageBody)
	}

	body, _ := json.Marshal(wire.SystemMessageBody{Severity: "warn", Text: "wind advisory"})
	handlers[wire.TypeSystemMessage](body, dispatch)

	if got.Text != "wind advisory" {
		t.Errorf("dispatched text = %q, want wind advisory", got.Text)
	}
}

func TestHandlers_UndecodableBodyReportsNotice(t *testing.T) {
	store := fleet.NewStore(nil)

	var notices []string
	handlers := fleet.Handlers(store, func(msg string) {
		notices = append(notices, msg)
	})

	handlers[wire.TypePosition]([]byte(`{not json`), func(string, any) {
		t.Error("dispatch called for undecodable body")
	})
	handlers[wire.TypeClockInfo](nil, func(string, any) {})

	if len(notices) != 2 {
		t.Fatalf("got %d notices, want 2: %v", len(notices), notices)
	}
	if !strings.Contains(notices[0], "POS-INF") {
		t.Errorf("notice = %q, want mention of POS-INF", notices[0])
	}
	if len(store.IDs()) != 0 {
		t.Error("store modified by undecodable body")
	}
}
