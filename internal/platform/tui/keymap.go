package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-brawler/internal/core"
)

// holdWindow is how many ticks a key press counts as held. Terminals only
// report presses (and auto-repeats), never releases, so each press refreshes
// a short hold counter and the key reads as released once it runs out.
const holdWindow = 9

// hold slots, one per direction and button.
const (
	holdLeft = iota
	holdRight
	holdUp
	holdDown
	holdJump
	holdAttack
	holdShield
	holdGrab
	holdCount
)

// KeyMapper translates Bubble Tea key messages into per-tick fighter inputs.
// This centralizes key bindings and makes them testable.
type KeyMapper struct {
	hold [holdCount]int
}

// NewKeyMapper creates a key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// Press records a key press. Returns true for a quit request.
func (km *KeyMapper) Press(msg tea.KeyMsg) (isQuit bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		return true
	case "a", "left":
		km.hold[holdLeft] = holdWindow
	case "d", "right":
		km.hold[holdRight] = holdWindow
	case "w", "up":
		km.hold[holdUp] = holdWindow
	case "s", "down":
		km.hold[holdDown] = holdWindow
	case " ":
		km.hold[holdJump] = holdWindow
	case "j":
		km.hold[holdAttack] = holdWindow
	case "k":
		km.hold[holdShield] = holdWindow
	case "l":
		km.hold[holdGrab] = holdWindow
	}
	return false
}

// Sample builds the input for the next tick from the current hold state and
// decrements the hold counters. prev is last tick's input for the same port,
// used to derive press and release edges.
func (km *KeyMapper) Sample(prev core.InputSnapshot) core.InputSnapshot {
	var held core.Buttons
	if km.hold[holdJump] > 0 || km.hold[holdUp] > 0 {
		held = held.With(core.ButtonJump)
	}
	if km.hold[holdAttack] > 0 {
		held = held.With(core.ButtonAttack)
	}
	if km.hold[holdShield] > 0 {
		held = held.With(core.ButtonShield)
	}
	if km.hold[holdGrab] > 0 {
		held = held.With(core.ButtonGrab)
	}

	var stickX, stickY float64
	if km.hold[holdLeft] > 0 {
		stickX -= 1
	}
	if km.hold[holdRight] > 0 {
		stickX += 1
	}
	if km.hold[holdDown] > 0 {
		stickY -= 1
	}
	if km.hold[holdUp] > 0 {
		stickY += 1
	}

	for i := range km.hold {
		if km.hold[i] > 0 {
			km.hold[i]--
		}
	}

	return prev.NextFrom(held, stickX, stickY)
}

// Clear releases everything, e.g. when a match ends.
func (km *KeyMapper) Clear() {
	km.hold = [holdCount]int{}
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k":
		return MenuActionUp
	case "s", "down", "j":
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	}
	return MenuActionNone
}
