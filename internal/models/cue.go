package models

// Cue is a single timed renderable unit, produced by an external subtitle
// decoder and stored in a buffer store. A cue is never mutated after it has
// been handed to the store, so two lookups returning the same pointer are
// guaranteed to carry identical content. Renderers rely on this to skip
// re-rendering when the active cue has not changed.
type Cue struct {
	// Start is the cue start time in seconds.
	Start float64
	// End is the cue end time in seconds. The cue covers [Start, End).
	End float64
	// Payload is the opaque renderable content. The store never inspects it.
	Payload interface{}
}

// CueGroup is a contiguous span of buffered cues.
// Invariants: Start <= End; Cues sorted ascending by Start and mutually
// non-overlapping. The declared [Start, End) may be wider than the span of
// the cues themselves, e.g. a subtitle segment containing a silent gap.
type CueGroup struct {
	Start float64
	End   float64
	Cues  []*Cue
}
