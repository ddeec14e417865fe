// Package pipeline runs the progressive enrichment flow: resolve a company
// from free text, then stream increasingly complete profile snapshots.
package pipeline

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/timi233/enterprise-brain/internal/model"
)

// Emitter delivers one snapshot to the client. Emit is called from a single
// goroutine per request.
type Emitter interface {
	Emit(snap model.Snapshot) error
}

// sequencer enforces the stream contract: stage numbers never regress, the
// system-error stage is the only out-of-order emission allowed, nothing
// follows a terminal snapshot, and a terminal snapshot never says processing.
type sequencer struct {
	lastStage int
	done      bool
}

func (s *sequencer) check(snap model.Snapshot) error {
	if s.done {
		return eris.New("pipeline: emit after terminal snapshot")
	}
	if snap.Stage != model.SystemErrorStage {
		if snap.Stage < s.lastStage {
			return eris.Errorf("pipeline: stage regressed from %d to %d", s.lastStage, snap.Stage)
		}
		s.lastStage = snap.Stage
	}
	if snap.Terminal() {
		if snap.Status == model.StatusProcessing {
			return eris.New("pipeline: terminal snapshot cannot be processing")
		}
		s.done = true
	}
	return nil
}

// StreamEmitter writes snapshots as NDJSON, flushing after each line so the
// client sees progress immediately.
type StreamEmitter struct {
	seq   sequencer
	enc   *json.Encoder
	flush func()
}

// NewStreamEmitter creates an emitter over w. flush may be nil; pass the
// response flusher when streaming over HTTP.
func NewStreamEmitter(w io.Writer, flush func()) *StreamEmitter {
	return &StreamEmitter{enc: json.NewEncoder(w), flush: flush}
}

// Emit validates the snapshot against the stream contract and writes it.
func (e *StreamEmitter) Emit(snap model.Snapshot) error {
	if err := e.seq.check(snap); err != nil {
		return err
	}
	if err := e.enc.Encode(snap); err != nil {
		return eris.Wrap(err, "pipeline: encode snapshot")
	}
	if e.flush != nil {
		e.flush()
	}
	return nil
}
