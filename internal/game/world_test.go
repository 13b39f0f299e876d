package game

import (
	"errors"
	"testing"

	"github.com/pixil98/go-testutil"
)

// mapStore is an in-memory Storer for tests.
type mapStore struct {
	locs map[string]*Location
}

func (s *mapStore) Get(id string) *Location {
	return s.locs[id]
}

func (s *mapStore) GetAll() map[string]*Location {
	return s.locs
}

func testStore() *mapStore {
	return &mapStore{locs: map[string]*Location{
		"tavern": {
			Name:        "The Rusty Flagon",
			Description: "A dim tavern thick with pipe smoke.",
			Connections: []string{"cellar"},
			NPCs: []NPC{
				{Id: "goblin", Name: "Snaggletooth", HP: 12, Hostile: true},
				{Id: "keeper", Name: "Innkeeper", HP: 20, MaxHP: 20},
			},
			Items: []Item{{Id: "mug", Name: "Dented Mug", Kind: ItemKindMisc}},
		},
		"cellar": {
			Name:        "The Cellar",
			Description: "Barrels and cobwebs.",
			Connections: []string{"tavern"},
		},
	}}
}

func newTestWorld(t *testing.T, opts ...WorldStateOpt) *WorldState {
	t.Helper()
	w, err := NewWorldState(testStore(), "tavern", "The adventure begins.", opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return w
}

func fixedRoll(n int) WorldStateOpt {
	return WithRoll(func() int { return n })
}

func TestNewWorldState(t *testing.T) {
	w := newTestWorld(t)

	snap := w.Snapshot()
	testutil.AssertEqual(t, "scene", snap.Context.CurrentScene, "The adventure begins.")
	testutil.AssertEqual(t, "location", snap.Context.CurrentLocation, "tavern")
	testutil.AssertEqual(t, "generated flag", snap.SceneGenerated, false)

	// An NPC without explicit max HP gets its starting HP as the restore value.
	loc := snap.CurrentLocation()
	testutil.AssertEqual(t, "goblin max hp", loc.NPCs[0].MaxHP, 12)
	testutil.AssertEqual(t, "keeper max hp", loc.NPCs[1].MaxHP, 20)
}

func TestNewWorldState_MissingStart(t *testing.T) {
	_, err := NewWorldState(testStore(), "volcano", "scene")
	if !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("err = %v, expected ErrLocationNotFound", err)
	}
}

func TestNewWorldState_ClonesLocations(t *testing.T) {
	store := testStore()
	w, err := NewWorldState(store, "tavern", "scene", fixedRoll(20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w.Join(&Player{Id: "p1", Name: "Alice", Str: 5, HP: 30}, "conn-1")
	if _, err := w.RecordAction("p1", "attack"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "store goblin hp", store.locs["tavern"].NPCs[0].HP, 12)
}

func TestWorldState_Join(t *testing.T) {
	w := newTestWorld(t)

	w.Join(&Player{Id: "p1", Name: "Alice", Str: 10, HP: 30}, "conn-1")
	testutil.AssertEqual(t, "player count", w.PlayerCount(), 1)

	p := w.Player("p1")
	testutil.AssertEqual(t, "conn id", p.ConnId, "conn-1")
	if p.Inventory == nil {
		t.Error("inventory should be initialized")
	}

	// Rejoining with the same id refreshes the connection reference.
	w.Join(&Player{Id: "p1", Name: "Alice", Str: 10, HP: 30}, "conn-2")
	testutil.AssertEqual(t, "player count after rejoin", w.PlayerCount(), 1)
	testutil.AssertEqual(t, "refreshed conn id", w.Player("p1").ConnId, "conn-2")
}

func TestWorldState_RecordAction(t *testing.T) {
	tests := map[string]struct {
		roll       int
		str        int
		expRoll    int
		expSuccess bool
		expNPCHP   int
	}{
		"success damages hostile npc": {
			roll:       10,
			str:        5,
			expRoll:    15,
			expSuccess: true,
			expNPCHP:   6,
		},
		"failure leaves npc alone": {
			roll:       5,
			str:        3,
			expRoll:    8,
			expSuccess: false,
			expNPCHP:   12,
		},
		"threshold is inclusive": {
			roll:       10,
			str:        2,
			expRoll:    12,
			expSuccess: true,
			expNPCHP:   6,
		},
		"one under threshold fails": {
			roll:       10,
			str:        1,
			expRoll:    11,
			expSuccess: false,
			expNPCHP:   12,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := newTestWorld(t, fixedRoll(tt.roll))
			w.Join(&Player{Id: "p1", Name: "Alice", Str: tt.str, HP: 30}, "conn-1")

			entry, err := w.RecordAction("p1", "swing wildly")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			testutil.AssertEqual(t, "roll", entry.Roll, tt.expRoll)
			testutil.AssertEqual(t, "success", entry.Success, tt.expSuccess)
			testutil.AssertEqual(t, "player", entry.PlayerId, "p1")
			testutil.AssertEqual(t, "action", entry.Action, "swing wildly")

			snap := w.Snapshot()
			testutil.AssertEqual(t, "goblin hp", snap.CurrentLocation().NPCs[0].HP, tt.expNPCHP)
			testutil.AssertEqual(t, "keeper hp", snap.CurrentLocation().NPCs[1].HP, 20)
			testutil.AssertEqual(t, "log length", len(snap.Log), 1)
		})
	}
}

func TestWorldState_RecordAction_UnknownPlayer(t *testing.T) {
	w := newTestWorld(t)

	_, err := w.RecordAction("ghost", "haunt")
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("err = %v, expected ErrPlayerNotFound", err)
	}
}

func TestWorldState_RecordAction_NPCHPCanGoNegative(t *testing.T) {
	w := newTestWorld(t, fixedRoll(20))
	w.Join(&Player{Id: "p1", Name: "Alice", Str: 10, HP: 30}, "conn-1")

	for i := 0; i < 3; i++ {
		if _, err := w.RecordAction("p1", "attack"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	testutil.AssertEqual(t, "goblin hp", w.Snapshot().CurrentLocation().NPCs[0].HP, -6)
}

func TestWorldState_RecentEventsBounded(t *testing.T) {
	w := newTestWorld(t, fixedRoll(1))
	w.Join(&Player{Id: "p1", Name: "Alice", Str: 1, HP: 30}, "conn-1")

	for i := 0; i < MaxRecentEvents+3; i++ {
		if _, err := w.RecordAction("p1", "poke"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	snap := w.Snapshot()
	testutil.AssertEqual(t, "recent events", len(snap.Context.RecentEvents), MaxRecentEvents)
	testutil.AssertEqual(t, "full log", len(snap.Log), MaxRecentEvents+3)
}

func TestWorldState_Leave(t *testing.T) {
	w := newTestWorld(t)
	w.Join(&Player{Id: "p1", Name: "Alice", Str: 10, HP: 30}, "conn-1")
	w.Join(&Player{Id: "p2", Name: "Bob", Str: 10, HP: 30}, "conn-2")

	p := w.Leave("conn-1")
	if p == nil || p.Id != "p1" {
		t.Fatalf("leave returned %+v, expected p1", p)
	}
	testutil.AssertEqual(t, "player count", w.PlayerCount(), 1)

	if p := w.Leave("conn-unknown"); p != nil {
		t.Errorf("leave with unknown connection returned %+v, expected nil", p)
	}
}

func TestWorldState_ResetIfEmpty(t *testing.T) {
	w := newTestWorld(t, fixedRoll(20))
	w.Join(&Player{Id: "p1", Name: "Alice", Str: 10, HP: 30}, "conn-1")

	if _, err := w.RecordAction("p1", "attack"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.MarkSceneGenerated()
	w.SetScene("A new scene unfolds.")

	// Players remain, so nothing resets.
	if w.ResetIfEmpty() {
		t.Fatal("reset should not happen while players remain")
	}

	w.Leave("conn-1")
	if !w.ResetIfEmpty() {
		t.Fatal("reset should happen once the session empties")
	}

	snap := w.Snapshot()
	testutil.AssertEqual(t, "scene", snap.Context.CurrentScene, "The adventure begins.")
	testutil.AssertEqual(t, "last response", snap.Context.LastResponse, "")
	testutil.AssertEqual(t, "log length", len(snap.Log), 0)
	testutil.AssertEqual(t, "recent events", len(snap.Context.RecentEvents), 0)
	testutil.AssertEqual(t, "generated flag", snap.SceneGenerated, false)
	testutil.AssertEqual(t, "goblin hp restored", snap.CurrentLocation().NPCs[0].HP, 12)
}

func TestWorldState_SceneTracking(t *testing.T) {
	w := newTestWorld(t)

	testutil.AssertEqual(t, "initial flag", w.SceneGenerated(), false)
	w.MarkSceneGenerated()
	testutil.AssertEqual(t, "flag after mark", w.SceneGenerated(), true)

	w.SetScene("Night falls over the tavern.")
	snap := w.Snapshot()
	testutil.AssertEqual(t, "scene", snap.Context.CurrentScene, "Night falls over the tavern.")
	testutil.AssertEqual(t, "last response", snap.Context.LastResponse, "Night falls over the tavern.")

	w.SetLastResponse("The goblin snarls.")
	snap = w.Snapshot()
	testutil.AssertEqual(t, "scene unchanged", snap.Context.CurrentScene, "Night falls over the tavern.")
	testutil.AssertEqual(t, "updated response", snap.Context.LastResponse, "The goblin snarls.")
}

func TestSnapshot_Isolation(t *testing.T) {
	w := newTestWorld(t)
	w.Join(&Player{Id: "p1", Name: "Alice", Str: 10, HP: 30}, "conn-1")

	snap := w.Snapshot()
	snap.CurrentLocation().NPCs[0].HP = 1
	snap.Players["p1"].HP = 1

	after := w.Snapshot()
	testutil.AssertEqual(t, "npc hp", after.CurrentLocation().NPCs[0].HP, 12)
	testutil.AssertEqual(t, "player hp", after.Players["p1"].HP, 30)
}
