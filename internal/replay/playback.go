package replay

import (
	"fmt"

	"github.com/vovakirdan/tui-brawler/internal/sim"
)

// ErrDigestMismatch reports that a re-simulated replay did not reproduce
// the recorded final state. Either the frame data differs from the
// recording session or the simulation has lost determinism.
var ErrDigestMismatch = fmt.Errorf("replay: digest mismatch")

// Apply re-simulates the replay on a freshly constructed match and verifies
// the final state digest. The match must be built from the replay header's
// stage, entrants, tick rate and seed; Apply only drives the ticks.
func (r *Replay) Apply(m *sim.Match) (*sim.Snapshot, error) {
	snap := m.Snapshot()
	for tick := 0; tick < len(r.inputs); tick++ {
		var err error
		if snap, err = m.Advance(r.inputs[tick]); err != nil {
			return nil, fmt.Errorf("replay: simulation faulted at tick %d: %w", tick, err)
		}
		if snap.Finished {
			break
		}
	}
	if got := snap.Digest(); got != r.Digest {
		return snap, fmt.Errorf("%w: recorded %x, replayed %x", ErrDigestMismatch, r.Digest, got)
	}
	return snap, nil
}
