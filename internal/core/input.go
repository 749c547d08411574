package core

// Button is a logical controller button, abstracted from physical devices.
// The simulation only ever sees these; key bindings live in the platform
// layer.
type Button uint8

const (
	ButtonJump Button = iota
	ButtonAttack
	ButtonShield
	ButtonGrab

	buttonCount
)

// String returns a human-readable name for the button.
func (b Button) String() string {
	switch b {
	case ButtonJump:
		return "Jump"
	case ButtonAttack:
		return "Attack"
	case ButtonShield:
		return "Shield"
	case ButtonGrab:
		return "Grab"
	default:
		return "Unknown"
	}
}

// Buttons is a bitmask over Button values. A mask copies by value, which
// keeps input snapshots trivially cloneable and hashable for replays.
type Buttons uint8

// With returns the mask with b set.
func (m Buttons) With(b Button) Buttons {
	return m | 1<<b
}

// Has reports whether b is set in the mask.
func (m Buttons) Has(b Button) bool {
	return m&(1<<b) != 0
}

// InputSnapshot is the logical input state of one fighter for one simulation
// tick. Held carries the buttons currently down; Pressed and Released carry
// this tick's edges. The analog stick is normalized to [-1, 1] per axis.
type InputSnapshot struct {
	StickX float64
	StickY float64

	Held     Buttons
	Pressed  Buttons
	Released Buttons
}

// HeldB reports whether the button is currently down.
func (s InputSnapshot) HeldB(b Button) bool {
	return s.Held.Has(b)
}

// PressedB reports whether the button went down this tick.
func (s InputSnapshot) PressedB(b Button) bool {
	return s.Pressed.Has(b)
}

// ReleasedB reports whether the button went up this tick.
func (s InputSnapshot) ReleasedB(b Button) bool {
	return s.Released.Has(b)
}

// NextFrom derives a snapshot for the next tick given the buttons that are
// down now. Edges are computed against the receiver's Held mask.
func (s InputSnapshot) NextFrom(held Buttons, stickX, stickY float64) InputSnapshot {
	return InputSnapshot{
		StickX:   ClampF(stickX, -1, 1),
		StickY:   ClampF(stickY, -1, 1),
		Held:     held,
		Pressed:  held &^ s.Held,
		Released: s.Held &^ held,
	}
}

// InputSet carries one InputSnapshot per fighter port for a single tick.
// Ports are assigned at match creation in fighter order; a port with no
// entry reads as a neutral snapshot.
type InputSet struct {
	ByPort []InputSnapshot
}

// NewInputSet creates an input set with the given number of ports.
func NewInputSet(ports int) InputSet {
	return InputSet{ByPort: make([]InputSnapshot, ports)}
}

// Port returns the snapshot for the given port, or a neutral snapshot when
// the port is out of range.
func (s InputSet) Port(i int) InputSnapshot {
	if i < 0 || i >= len(s.ByPort) {
		return InputSnapshot{}
	}
	return s.ByPort[i]
}

// SetPort stores the snapshot for the given port. Out-of-range ports are
// ignored.
func (s *InputSet) SetPort(i int, in InputSnapshot) {
	if i < 0 || i >= len(s.ByPort) {
		return
	}
	s.ByPort[i] = in
}

// Clone returns a deep copy of the input set.
func (s InputSet) Clone() InputSet {
	out := InputSet{ByPort: make([]InputSnapshot, len(s.ByPort))}
	copy(out.ByPort, s.ByPort)
	return out
}
