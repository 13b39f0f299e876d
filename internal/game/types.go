package game

import "fmt"

// ItemKind classifies an item for the presentation layer and future mechanics.
type ItemKind string

const (
	ItemKindWeapon     ItemKind = "weapon"
	ItemKindArmor      ItemKind = "armor"
	ItemKindConsumable ItemKind = "consumable"
	ItemKindMisc       ItemKind = "misc"
)

func (k *ItemKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "weapon":
		*k = ItemKindWeapon
	case "armor":
		*k = ItemKindArmor
	case "consumable":
		*k = ItemKindConsumable
	case "misc":
		*k = ItemKindMisc
	default:
		return fmt.Errorf("unknown item kind: %s", text)
	}
	return nil
}

// Item is a carryable object, either in a location or a player's inventory.
type Item struct {
	Id          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Kind        ItemKind `json:"type"`
}

// NPC is a non-player character placed in a location.
// HP is mutable and is not clamped at zero when damage is applied.
type NPC struct {
	Id      string `json:"id"`
	Name    string `json:"name"`
	HP      int    `json:"hp"`
	MaxHP   int    `json:"maxHp"`
	Hostile bool   `json:"hostile"`
}

// Player is a participant in the session. Str, Dex and HP bounds are
// enforced by the validate package before a player reaches the world.
type Player struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	Str       int    `json:"str"`
	Dex       int    `json:"dex"`
	HP        int    `json:"hp"`
	Inventory []Item `json:"inventory"`

	// ConnId ties the player to their current connection so a disconnect
	// can locate them. Refreshed when the same player rejoins.
	ConnId string `json:"-"`
}

// LogEntry records one resolved player action. Immutable once appended.
type LogEntry struct {
	PlayerId string `json:"player"`
	Action   string `json:"action"`
	Roll     int    `json:"roll"`
	Success  bool   `json:"success"`
}

// MaxRecentEvents bounds the context window handed to the narrator.
const MaxRecentEvents = 5

// GameContext is the narrative state the narrator builds prompts from.
type GameContext struct {
	CurrentScene    string     `json:"currentScene"`
	LastResponse    string     `json:"lastAIResponse"`
	RecentEvents    []LogEntry `json:"recentEvents"`
	CurrentLocation string     `json:"currentLocation"`
}
