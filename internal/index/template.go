package index

import (
	"math"
	"strconv"

	"streamplane/internal/models"
)

// TemplateIndex generates segments mathematically from a constant duration
// and a numbering scheme. It stores no segment list and is immutable by
// construction: everything it can ever say is computable locally.
type TemplateIndex struct {
	meta *ManifestIndex
}

// NewTemplate builds a template index over the given metadata.
func NewTemplate(meta *ManifestIndex) *TemplateIndex {
	return &TemplateIndex{meta: meta}
}

// Segments generates the descriptors covering [from, to]. Segment numbers
// start at StartNumber (1 when absent); the emitted time is the segment's
// media start time in ticks.
func (x *TemplateIndex) Segments(repID string, from, to float64) []models.SegmentDescriptor {
	m := x.meta
	if to < from || m.Duration == 0 || m.Timescale == 0 {
		return nil
	}
	from, to = normalizeRange(x, from, to)

	startNumber := m.StartNumber
	if startNumber == 0 {
		startNumber = 1
	}
	dur := float64(m.Duration) / float64(m.Timescale)

	var segs []models.SegmentDescriptor
	for t := from; t <= to; t += dur {
		ordinal := uint64(math.Floor(t / dur))
		segTime := ordinal * m.Duration
		segs = append(segs, models.SegmentDescriptor{
			ID:            repID + "/" + strconv.FormatUint(segTime, 10),
			RepID:         repID,
			Number:        ordinal + startNumber,
			Time:          segTime,
			Duration:      m.Duration,
			Timescale:     m.Timescale,
			MediaTemplate: m.Media,
		})
	}
	return segs
}

// InitSegment returns the initialization segment descriptor.
func (x *TemplateIndex) InitSegment(repID string) models.SegmentDescriptor {
	return initSegment(repID, x.meta)
}

// FirstPosition is unresolvable: the template puts no bound on time.
func (x *TemplateIndex) FirstPosition() (float64, bool) { return 0, false }

// LastPosition is unresolvable: the template puts no bound on time.
func (x *TemplateIndex) LastPosition() (float64, bool) { return 0, false }

// ShouldRefresh always reports false: any window is computable locally.
func (x *TemplateIndex) ShouldRefresh(from, to float64) bool { return false }

// CheckDiscontinuity always reports no discontinuity: the generated
// timeline cannot represent holes.
func (x *TemplateIndex) CheckDiscontinuity(t float64) float64 { return NoDiscontinuity }

// AddSegmentInfos is a no-op: the index is immutable by construction.
func (x *TemplateIndex) AddSegmentInfos(info NewSegmentInfo) bool { return false }
