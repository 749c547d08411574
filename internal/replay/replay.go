// Package replay records and replays matches as compressed input logs.
// A replay stores the match setup and the per-tick inputs, nothing else:
// the simulation is deterministic, so re-running the inputs reproduces the
// match exactly, and a state digest in the trailer proves it did.
//
// The on-disk format is zstd-compressed JSON lines: a header line, one line
// per tick, and a trailer line with the final digest.
package replay

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/vovakirdan/tui-brawler/internal/core"
)

// FormatVersion is bumped whenever the line format changes incompatibly.
const FormatVersion = 1

// Entrant mirrors the match setup for one port.
type Entrant struct {
	Character string `json:"character"`
	Team      int    `json:"team"`
}

// Header is the first line of a replay file.
type Header struct {
	Version   int       `json:"version"`
	Stage     string    `json:"stage"`
	TickRate  int       `json:"tick_rate"`
	Seed      int64     `json:"seed"`
	Stocks    int       `json:"stocks"`
	Entrants  []Entrant `json:"entrants"`
	CreatedAt time.Time `json:"created_at"`
}

// portInput is one port's input for one tick. Only the held mask and stick
// are stored; press/release edges are reconstructed from the previous tick.
type portInput struct {
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
	B uint8   `json:"b,omitempty"`
}

type tickLine struct {
	T int         `json:"t"`
	P []portInput `json:"p"`
}

type trailerLine struct {
	Digest string `json:"digest"`
	Ticks  int    `json:"ticks"`
}

// Recorder streams a match's inputs to a replay file as it is played.
type Recorder struct {
	f   *os.File
	enc *zstd.Encoder
	bw  *bufio.Writer
	n   int
	err error
}

// NewRecorder creates the replay file and writes the header.
func NewRecorder(path string, h Header) (*Recorder, error) {
	h.Version = FormatVersion
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("replay: cannot create directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("replay: cannot create file: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("replay: cannot init compressor: %w", err)
	}

	r := &Recorder{f: f, enc: enc, bw: bufio.NewWriterSize(enc, 64*1024)}
	if err := r.writeLine(h); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Recorder) writeLine(v any) error {
	if r.err != nil {
		return r.err
	}
	b, err := json.Marshal(v)
	if err == nil {
		_, err = r.bw.Write(append(b, '\n'))
	}
	if err != nil {
		r.err = fmt.Errorf("replay: write failed: %w", err)
	}
	return r.err
}

// WriteTick appends one tick's inputs.
func (r *Recorder) WriteTick(tick int, in core.InputSet) error {
	line := tickLine{T: tick, P: make([]portInput, len(in.ByPort))}
	for i, s := range in.ByPort {
		line.P[i] = portInput{X: s.StickX, Y: s.StickY, B: uint8(s.Held)}
	}
	if err := r.writeLine(line); err != nil {
		return err
	}
	r.n++
	return nil
}

// Finish writes the trailer with the final state digest and closes the file.
func (r *Recorder) Finish(digest uint64) error {
	werr := r.writeLine(trailerLine{Digest: strconv.FormatUint(digest, 16), Ticks: r.n})
	cerr := r.Close()
	if werr != nil {
		return werr
	}
	return cerr
}

// Close flushes and closes without writing a trailer. A replay closed this
// way will not load; call Finish on a completed match instead.
func (r *Recorder) Close() error {
	var first error
	if r.bw != nil {
		first = r.bw.Flush()
		r.bw = nil
	}
	if r.enc != nil {
		if err := r.enc.Close(); err != nil && first == nil {
			first = err
		}
		r.enc = nil
	}
	if r.f != nil {
		if err := r.f.Close(); err != nil && first == nil {
			first = err
		}
		r.f = nil
	}
	return first
}

// Replay is a fully loaded input log.
type Replay struct {
	Header Header
	Digest uint64
	inputs []core.InputSet
}

// Length returns the number of recorded ticks.
func (r *Replay) Length() int { return len(r.inputs) }

// InputAt returns the input set for a recorded tick, with press and release
// edges already reconstructed. Out-of-range ticks read as neutral.
func (r *Replay) InputAt(tick int) core.InputSet {
	if tick < 0 || tick >= len(r.inputs) {
		return core.NewInputSet(len(r.Header.Entrants))
	}
	return r.inputs[tick]
}

// Load reads and validates a replay file.
func Load(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("replay: cannot open file: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("replay: cannot init decompressor: %w", err)
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	if !sc.Scan() {
		return nil, errors.New("replay: empty file")
	}
	var h Header
	if err := json.Unmarshal(sc.Bytes(), &h); err != nil {
		return nil, fmt.Errorf("replay: bad header: %w", err)
	}
	if h.Version != FormatVersion {
		return nil, fmt.Errorf("replay: unsupported format version %d", h.Version)
	}
	if len(h.Entrants) < 2 {
		return nil, fmt.Errorf("replay: header lists %d entrants", len(h.Entrants))
	}

	ports := len(h.Entrants)
	prev := make([]core.InputSnapshot, ports)
	rp := &Replay{Header: h}

	var trailer *trailerLine
	for sc.Scan() {
		raw := sc.Bytes()
		var line tickLine
		if err := json.Unmarshal(raw, &line); err == nil && line.P != nil {
			if line.T != len(rp.inputs) {
				return nil, fmt.Errorf("replay: tick %d out of order at line %d", line.T, len(rp.inputs))
			}
			in := core.NewInputSet(ports)
			for i := 0; i < ports && i < len(line.P); i++ {
				p := line.P[i]
				next := prev[i].NextFrom(core.Buttons(p.B), p.X, p.Y)
				in.SetPort(i, next)
				prev[i] = next
			}
			rp.inputs = append(rp.inputs, in)
			continue
		}
		var tl trailerLine
		if err := json.Unmarshal(raw, &tl); err != nil || tl.Digest == "" {
			return nil, fmt.Errorf("replay: unrecognized line after tick %d", len(rp.inputs))
		}
		trailer = &tl
		break
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("replay: read failed: %w", err)
	}
	if trailer == nil {
		return nil, errors.New("replay: missing trailer, file is truncated")
	}
	if trailer.Ticks != len(rp.inputs) {
		return nil, fmt.Errorf("replay: trailer claims %d ticks, file has %d", trailer.Ticks, len(rp.inputs))
	}
	if rp.Digest, err = strconv.ParseUint(trailer.Digest, 16, 64); err != nil {
		return nil, fmt.Errorf("replay: bad digest: %w", err)
	}
	return rp, nil
}
