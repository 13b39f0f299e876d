package game

// Snapshot is a point-in-time copy of the world suitable for broadcasting.
// Building it under the lock and marshalling it outside keeps JSON encoding
// off the critical section.
type Snapshot struct {
	Locations      map[string]*Location `json:"locations"`
	Players        map[string]*Player   `json:"players"`
	Log            []LogEntry           `json:"log"`
	Context        GameContext          `json:"context"`
	SceneGenerated bool                 `json:"isLocationGenerated"`
}

// Snapshot copies the current world state.
func (w *WorldState) Snapshot() *Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	locs := make(map[string]*Location, len(w.locations))
	for id, loc := range w.locations {
		locs[id] = loc.clone()
	}

	players := make(map[string]*Player, len(w.players))
	for id, p := range w.players {
		cp := *p
		cp.Inventory = append([]Item(nil), p.Inventory...)
		players[id] = &cp
	}

	ctx := w.context
	ctx.RecentEvents = append([]LogEntry(nil), w.context.RecentEvents...)

	return &Snapshot{
		Locations:      locs,
		Players:        players,
		Log:            append([]LogEntry(nil), w.log...),
		Context:        ctx,
		SceneGenerated: w.sceneGenerated,
	}
}

// Location returns the named location from the snapshot, or nil.
func (s *Snapshot) Location(id string) *Location {
	return s.Locations[id]
}

// CurrentLocation returns the snapshot's current location, or nil if the
// context points at an id with no matching entry.
func (s *Snapshot) CurrentLocation() *Location {
	return s.Locations[s.Context.CurrentLocation]
}
