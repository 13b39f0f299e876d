package game

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// Location is a place in the world, loaded from asset files.
type Location struct {
	Name        string   `json:"name"`
	Description string   `json:"desc"`
	Connections []string `json:"connections,omitempty"`
	NPCs        []NPC    `json:"npcs,omitempty"`
	Items       []Item   `json:"items,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (l *Location) Validate() error {
	el := errors.NewErrorList()

	if l.Name == "" {
		el.Add(fmt.Errorf("location name is required"))
	}
	if l.Description == "" {
		el.Add(fmt.Errorf("location description is required"))
	}

	for i, c := range l.Connections {
		if c == "" {
			el.Add(fmt.Errorf("connection %d: id is required", i))
		}
	}

	for i, n := range l.NPCs {
		if n.Id == "" {
			el.Add(fmt.Errorf("npc %d: id is required", i))
		}
		if n.Name == "" {
			el.Add(fmt.Errorf("npc %d: name is required", i))
		}
		if n.HP <= 0 {
			el.Add(fmt.Errorf("npc %d: hp must be positive", i))
		}
	}

	for i, it := range l.Items {
		if it.Id == "" {
			el.Add(fmt.Errorf("item %d: id is required", i))
		}
		if it.Name == "" {
			el.Add(fmt.Errorf("item %d: name is required", i))
		}
	}

	return el.Err()
}

// clone returns a deep copy so world instances never alias store records.
func (l *Location) clone() *Location {
	c := &Location{
		Name:        l.Name,
		Description: l.Description,
		Connections: append([]string(nil), l.Connections...),
		NPCs:        append([]NPC(nil), l.NPCs...),
		Items:       append([]Item(nil), l.Items...),
	}
	return c
}
