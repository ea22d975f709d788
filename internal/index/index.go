// Package index computes which media segments must be fetched for a
// requested playback window, given manifest-derived index metadata. Four
// indexing flavors are supported: template (mathematically generated),
// timeline (explicit run-length list), base (static resource with an
// incrementally discovered timeline) and list (static enumerated
// segments).
package index

import "streamplane/internal/models"

// NoDiscontinuity is the CheckDiscontinuity result meaning the index has no
// hole at the queried time, or cannot represent one.
const NoDiscontinuity = -1

// Index type tags as declared by the manifest-parsing collaborator.
const (
	TypeTemplate = "template"
	TypeTimeline = "timeline"
	TypeBase     = "base"
	TypeList     = "list"
)

// TimelineElement describes a run of R+1 consecutive segments of duration D
// ticks, the first starting at timestamp TS ticks.
type TimelineElement struct {
	TS    uint64
	D     uint64
	R     uint32
	Range *models.ByteRange
}

// ListItem is one explicitly enumerated segment of a list index.
type ListItem struct {
	Media string
	Range *models.ByteRange
}

// ManifestIndex is the variant-tagged index metadata for one
// representation, produced by the manifest-parsing collaborator. Template
// indexes use Duration/StartNumber/Media; timeline and base indexes use
// Timeline; list indexes use List. The value is mutated in place by
// AddSegmentInfos and replaced wholesale on a full manifest reload.
type ManifestIndex struct {
	Type      string
	Timescale uint64

	// Template fields.
	Duration    uint64
	StartNumber uint64
	Media       string

	// Initialization segment location.
	Initialization string
	InitRange      *models.ByteRange
	IndexRange     *models.ByteRange

	// Timeline/Base fields.
	Timeline []TimelineElement

	// List fields. Duration above is the per-item duration in ticks.
	List []ListItem
}

// NewSegmentInfo is segment-discovery metadata from an in-stream signaling
// or manifest-refresh collaborator, expressed in its own timescale.
type NewSegmentInfo struct {
	Time      uint64
	Duration  uint64
	Timescale uint64
	Count     uint32
	Range     *models.ByteRange
}

// SegmentIndex is the capability set shared by all index variants. Not
// every variant can honor every capability: positions may be unresolvable
// and mutation may be a no-op, as documented per method.
type SegmentIndex interface {
	// Segments returns the ordered descriptors of the media segments
	// needed to play [from, to] seconds for the given representation.
	// A window with to < from yields an empty result, not an error.
	Segments(repID string, from, to float64) []models.SegmentDescriptor

	// InitSegment returns the initialization segment descriptor.
	InitSegment(repID string) models.SegmentDescriptor

	// FirstPosition returns the earliest position (seconds) the index can
	// provide, when one is representable.
	FirstPosition() (float64, bool)

	// LastPosition returns the latest position (seconds) the index can
	// provide, when one is representable.
	LastPosition() (float64, bool)

	// ShouldRefresh reports whether the requested window exceeds what the
	// index currently knows, so the manifest should be refetched.
	ShouldRefresh(from, to float64) bool

	// CheckDiscontinuity returns the start position (seconds) of the next
	// buffered content when t sits just before a hole in the index, or
	// NoDiscontinuity.
	CheckDiscontinuity(t float64) float64

	// AddSegmentInfos folds newly discovered segment metadata into the
	// index and reports whether the index changed.
	AddSegmentInfos(info NewSegmentInfo) bool
}
