package index

import (
	"strconv"

	"streamplane/internal/models"
)

// TimelineIndex walks an explicit, ordered run-length list of segment
// groups. It grows as the manifest-refresh collaborator discovers new
// timeline elements.
type TimelineIndex struct {
	meta *ManifestIndex
}

// NewTimeline builds a timeline index over the given metadata.
func NewTimeline(meta *ManifestIndex) *TimelineIndex {
	return &TimelineIndex{meta: meta}
}

// runEnd returns the tick just past the last segment of an element.
func runEnd(el TimelineElement) uint64 {
	return el.TS + uint64(el.R+1)*el.D
}

// Segments walks the stored timeline, expanding repeat runs, and returns
// the descriptors overlapping [from, to].
func (x *TimelineIndex) Segments(repID string, from, to float64) []models.SegmentDescriptor {
	m := x.meta
	if to < from || m.Timescale == 0 {
		return nil
	}
	from, to = normalizeRange(x, from, to)
	fromTicks := from * float64(m.Timescale)
	toTicks := to * float64(m.Timescale)

	var segs []models.SegmentDescriptor
	for _, el := range m.Timeline {
		if el.D == 0 {
			continue
		}
		if float64(runEnd(el)) <= fromTicks {
			continue
		}
		if float64(el.TS) > toTicks {
			break
		}
		for k := uint32(0); k <= el.R; k++ {
			segStart := el.TS + uint64(k)*el.D
			if float64(segStart) > toTicks {
				break
			}
			if float64(segStart+el.D) <= fromTicks {
				continue
			}
			segs = append(segs, models.SegmentDescriptor{
				ID:            repID + "/" + strconv.FormatUint(segStart, 10),
				RepID:         repID,
				Number:        uint64(len(segs)) + 1,
				Time:          segStart,
				Duration:      el.D,
				Timescale:     m.Timescale,
				Range:         el.Range,
				MediaTemplate: m.Media,
			})
		}
	}
	return segs
}

// InitSegment returns the initialization segment descriptor.
func (x *TimelineIndex) InitSegment(repID string) models.SegmentDescriptor {
	return initSegment(repID, x.meta)
}

// FirstPosition returns the start of the first timeline element.
func (x *TimelineIndex) FirstPosition() (float64, bool) {
	m := x.meta
	if len(m.Timeline) == 0 || m.Timescale == 0 {
		return 0, false
	}
	return float64(m.Timeline[0].TS) / float64(m.Timescale), true
}

// LastPosition returns the end of the last timeline element.
func (x *TimelineIndex) LastPosition() (float64, bool) {
	m := x.meta
	if len(m.Timeline) == 0 || m.Timescale == 0 {
		return 0, false
	}
	return float64(runEnd(m.Timeline[len(m.Timeline)-1])) / float64(m.Timescale), true
}

// ShouldRefresh reports true when the requested window reaches past the
// known end of the timeline, meaning the manifest must be refetched before
// the window can be served.
func (x *TimelineIndex) ShouldRefresh(from, to float64) bool {
	if to < from {
		return false
	}
	last, ok := x.LastPosition()
	if !ok {
		// Nothing known yet: any non-empty window needs a refresh.
		return true
	}
	return to > last
}

// CheckDiscontinuity returns the start (seconds) of the element following
// a hole when t sits within one second of that hole, and NoDiscontinuity
// otherwise. Callers use the returned position to skip the playhead over
// the gap.
func (x *TimelineIndex) CheckDiscontinuity(t float64) float64 {
	m := x.meta
	if m.Timescale == 0 {
		return NoDiscontinuity
	}
	ticks := t * float64(m.Timescale)
	for i, el := range m.Timeline {
		end := runEnd(el)
		if ticks < float64(el.TS) || ticks > float64(end) {
			continue
		}
		if i+1 >= len(m.Timeline) {
			return NoDiscontinuity
		}
		next := m.Timeline[i+1]
		if next.TS == end {
			return NoDiscontinuity
		}
		// Only flag the hole once the playhead is about to hit it.
		if float64(end)-ticks < float64(m.Timescale) {
			return float64(next.TS) / float64(m.Timescale)
		}
		return NoDiscontinuity
	}
	return NoDiscontinuity
}

// AddSegmentInfos appends a timeline element for the discovered run,
// rescaling into the index timescale when the metadata uses a different
// one. It always grows the timeline and reports true.
func (x *TimelineIndex) AddSegmentInfos(info NewSegmentInfo) bool {
	m := x.meta
	m.Timeline = append(m.Timeline, TimelineElement{
		TS:    rescale(info.Time, info.Timescale, m.Timescale),
		D:     rescale(info.Duration, info.Timescale, m.Timescale),
		R:     info.Count,
		Range: info.Range,
	})
	return true
}
