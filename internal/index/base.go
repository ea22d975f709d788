package index

import "streamplane/internal/models"

// BaseIndex describes a single static resource whose internal timeline is
// discovered incrementally, typically from an embedded segment index
// fetched once. Enumeration, positions and discontinuity detection are
// delegated to an owned timeline strategy; only the mutation and refresh
// policies differ.
type BaseIndex struct {
	timeline *TimelineIndex
}

// NewBase builds a base index over the given metadata.
func NewBase(meta *ManifestIndex) *BaseIndex {
	return &BaseIndex{timeline: NewTimeline(meta)}
}

// Segments delegates to the timeline strategy.
func (x *BaseIndex) Segments(repID string, from, to float64) []models.SegmentDescriptor {
	return x.timeline.Segments(repID, from, to)
}

// InitSegment delegates to the timeline strategy.
func (x *BaseIndex) InitSegment(repID string) models.SegmentDescriptor {
	return x.timeline.InitSegment(repID)
}

// FirstPosition delegates to the timeline strategy.
func (x *BaseIndex) FirstPosition() (float64, bool) { return x.timeline.FirstPosition() }

// LastPosition delegates to the timeline strategy.
func (x *BaseIndex) LastPosition() (float64, bool) { return x.timeline.LastPosition() }

// ShouldRefresh always reports false: the resource is static, its timeline
// is discovered in-band rather than refreshed from the manifest.
func (x *BaseIndex) ShouldRefresh(from, to float64) bool { return false }

// CheckDiscontinuity delegates to the timeline strategy.
func (x *BaseIndex) CheckDiscontinuity(t float64) float64 {
	return x.timeline.CheckDiscontinuity(t)
}

// AddSegmentInfos folds in-band discovered metadata into the timeline.
// Metadata that does not extend past the currently known last element is
// already discovered and is refused.
func (x *BaseIndex) AddSegmentInfos(info NewSegmentInfo) bool {
	m := x.timeline.meta
	if n := len(m.Timeline); n > 0 {
		scaled := rescale(info.Time, info.Timescale, m.Timescale)
		if scaled <= m.Timeline[n-1].TS {
			return false
		}
	}
	return x.timeline.AddSegmentInfos(info)
}
