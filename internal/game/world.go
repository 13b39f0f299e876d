package game

import (
	"fmt"
	"sync"

	"github.com/pixil98/go-saga/internal/storage"
)

// WorldState is the single source of truth for all mutable session state.
// All access must go through its methods to ensure thread-safety. One
// instance exists per session, owned by the session manager and passed into
// every handler.
type WorldState struct {
	mu sync.Mutex

	locations map[string]*Location
	players   map[string]*Player
	log       []LogEntry
	context   GameContext

	// sceneGenerated marks that the opening narrative has been produced
	// for this session lifetime. Cleared when the session empties out.
	sceneGenerated bool

	initialScene string
	roll         func() int
}

type WorldStateOpt func(*WorldState)

// WithRoll replaces the d20 roll used to resolve actions.
func WithRoll(roll func() int) WorldStateOpt {
	return func(w *WorldState) {
		w.roll = roll
	}
}

// NewWorldState builds a world from the location store. Location records are
// cloned so resets and damage never write back into the store. NPCs without
// an explicit max HP use their starting HP as the restore value.
func NewWorldState(locs storage.Storer[*Location], startLocation, openingScene string, opts ...WorldStateOpt) (*WorldState, error) {
	instances := make(map[string]*Location)
	for id, loc := range locs.GetAll() {
		inst := loc.clone()
		for i := range inst.NPCs {
			if inst.NPCs[i].MaxHP == 0 {
				inst.NPCs[i].MaxHP = inst.NPCs[i].HP
			}
		}
		instances[id] = inst
	}

	if _, ok := instances[startLocation]; !ok {
		return nil, fmt.Errorf("start location %q: %w", startLocation, ErrLocationNotFound)
	}

	w := &WorldState{
		locations: instances,
		players:   make(map[string]*Player),
		context: GameContext{
			CurrentScene:    openingScene,
			CurrentLocation: startLocation,
		},
		initialScene: openingScene,
		roll:         RollD20,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Join registers a player, overwriting any previous entry with the same id.
// A rejoin refreshes the connection reference.
func (w *WorldState) Join(p *Player, connId string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p.ConnId = connId
	if p.Inventory == nil {
		p.Inventory = []Item{}
	}
	w.players[p.Id] = p
}

// Player returns the player with the given id, or nil.
func (w *WorldState) Player(id string) *Player {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.players[id]
}

// PlayerCount returns the number of currently joined players.
func (w *WorldState) PlayerCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.players)
}

// RecordAction resolves the mechanics of one action: a d20 check against the
// acting player's strength, damage to the designated hostile NPC on success,
// and an immutable log entry appended to both the full log and the bounded
// recent-events window.
func (w *WorldState) RecordAction(playerId, action string) (LogEntry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[playerId]
	if !ok {
		return LogEntry{}, ErrPlayerNotFound
	}

	roll := w.roll() + p.Str
	success := roll >= successThreshold

	if success {
		if npc := w.hostileNPC(); npc != nil {
			npc.HP -= hostileNPCDamage
		}
	}

	entry := LogEntry{
		PlayerId: p.Id,
		Action:   action,
		Roll:     roll,
		Success:  success,
	}

	w.log = append(w.log, entry)
	w.context.RecentEvents = append(w.context.RecentEvents, entry)
	if len(w.context.RecentEvents) > MaxRecentEvents {
		w.context.RecentEvents = w.context.RecentEvents[len(w.context.RecentEvents)-MaxRecentEvents:]
	}

	return entry, nil
}

// hostileNPC returns the first hostile NPC in the current location.
// Caller must hold the lock.
func (w *WorldState) hostileNPC() *NPC {
	loc, ok := w.locations[w.context.CurrentLocation]
	if !ok {
		return nil
	}
	for i := range loc.NPCs {
		if loc.NPCs[i].Hostile {
			return &loc.NPCs[i]
		}
	}
	return nil
}

// Leave removes the player bound to the given connection reference.
// Returns the removed player, or nil if no player matched.
func (w *WorldState) Leave(connId string) *Player {
	w.mu.Lock()
	defer w.mu.Unlock()

	for id, p := range w.players {
		if p.ConnId == connId {
			delete(w.players, id)
			return p
		}
	}
	return nil
}

// ResetIfEmpty restores the world to its initial narrative state when no
// players remain: scene text, log and recent events cleared, NPC hit points
// restored, generation flag cleared. Reports whether a reset happened.
func (w *WorldState) ResetIfEmpty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.players) > 0 {
		return false
	}

	w.log = nil
	w.context.CurrentScene = w.initialScene
	w.context.LastResponse = ""
	w.context.RecentEvents = nil
	w.sceneGenerated = false

	for _, loc := range w.locations {
		for i := range loc.NPCs {
			loc.NPCs[i].HP = loc.NPCs[i].MaxHP
		}
	}

	return true
}

// SceneGenerated reports whether the opening narrative has been produced.
func (w *WorldState) SceneGenerated() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.sceneGenerated
}

// MarkSceneGenerated sets the generation flag. Set even when generation
// produced nothing, so every session lifetime asks the backend at most once.
func (w *WorldState) MarkSceneGenerated() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.sceneGenerated = true
}

// SetScene replaces both the current scene and last backend response.
func (w *WorldState) SetScene(narrative string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.context.CurrentScene = narrative
	w.context.LastResponse = narrative
}

// SetLastResponse records the most recent backend narrative.
func (w *WorldState) SetLastResponse(narrative string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.context.LastResponse = narrative
}
