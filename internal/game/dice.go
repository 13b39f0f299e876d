package game

import "math/rand/v2"

// successThreshold is the minimum check total for an action to succeed.
const successThreshold = 12

// hostileNPCDamage is the fixed damage a successful action deals to the
// designated hostile NPC in the current location.
const hostileNPCDamage = 6

// RollD20 rolls a single d20.
func RollD20() int {
	return rand.IntN(20) + 1
}
