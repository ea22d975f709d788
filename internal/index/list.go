package index

import (
	"strconv"

	"streamplane/internal/models"
)

// ListIndex serves a static enumerated segment list with a constant
// per-item duration. Everything is known up front; the index never changes
// and never needs a refresh.
type ListIndex struct {
	meta *ManifestIndex
}

// NewList builds a list index over the given metadata.
func NewList(meta *ManifestIndex) *ListIndex {
	return &ListIndex{meta: meta}
}

// Segments reads the stored list and returns the items overlapping
// [from, to].
func (x *ListIndex) Segments(repID string, from, to float64) []models.SegmentDescriptor {
	m := x.meta
	if to < from || m.Duration == 0 || m.Timescale == 0 {
		return nil
	}
	from, to = normalizeRange(x, from, to)
	fromTicks := from * float64(m.Timescale)
	toTicks := to * float64(m.Timescale)

	var segs []models.SegmentDescriptor
	for i, item := range m.List {
		start := uint64(i) * m.Duration
		if float64(start+m.Duration) <= fromTicks {
			continue
		}
		if float64(start) > toTicks {
			break
		}
		segs = append(segs, models.SegmentDescriptor{
			ID:            repID + "/" + strconv.FormatUint(start, 10),
			RepID:         repID,
			Number:        uint64(i),
			Time:          start,
			Duration:      m.Duration,
			Timescale:     m.Timescale,
			Range:         item.Range,
			MediaTemplate: item.Media,
		})
	}
	return segs
}

// InitSegment returns the initialization segment descriptor.
func (x *ListIndex) InitSegment(repID string) models.SegmentDescriptor {
	return initSegment(repID, x.meta)
}

// FirstPosition returns the start of the first listed segment.
func (x *ListIndex) FirstPosition() (float64, bool) {
	if len(x.meta.List) == 0 || x.meta.Timescale == 0 {
		return 0, false
	}
	return 0, true
}

// LastPosition returns the end of the last listed segment.
func (x *ListIndex) LastPosition() (float64, bool) {
	m := x.meta
	if len(m.List) == 0 || m.Timescale == 0 {
		return 0, false
	}
	return float64(uint64(len(m.List))*m.Duration) / float64(m.Timescale), true
}

// ShouldRefresh always reports false: the list is complete.
func (x *ListIndex) ShouldRefresh(from, to float64) bool { return false }

// CheckDiscontinuity always reports no discontinuity: listed segments are
// contiguous by construction.
func (x *ListIndex) CheckDiscontinuity(t float64) float64 { return NoDiscontinuity }

// AddSegmentInfos is a no-op: the list is static.
func (x *ListIndex) AddSegmentInfos(info NewSegmentInfo) bool { return false }
