package index

import (
	"strconv"
	"strings"

	"streamplane/internal/models"
)

// normalizeRange clamps a requested [from, to] window against the bounds
// the index can actually provide. Indexes without a representable bound
// (template) only get the floor at zero.
func normalizeRange(idx SegmentIndex, from, to float64) (float64, float64) {
	if from < 0 {
		from = 0
	}
	if first, ok := idx.FirstPosition(); ok && from < first {
		from = first
	}
	if last, ok := idx.LastPosition(); ok && to > last {
		to = last
	}
	return from, to
}

// rescale converts v from the metadata's timescale into the index's
// timescale. A segment of 4 ticks at timescale 2 is 2 ticks at timescale 1.
func rescale(v, metaTimescale, idxTimescale uint64) uint64 {
	if metaTimescale == idxTimescale || metaTimescale == 0 {
		return v
	}
	return v * idxTimescale / metaTimescale
}

// initSegment builds the initialization segment descriptor shared by all
// index variants.
func initSegment(repID string, m *ManifestIndex) models.SegmentDescriptor {
	return models.SegmentDescriptor{
		ID:            repID + "/init",
		RepID:         repID,
		Timescale:     m.Timescale,
		Range:         m.InitRange,
		IndexRange:    m.IndexRange,
		IsInit:        true,
		MediaTemplate: m.Initialization,
	}
}

// ExpandTemplate substitutes the manifest URL template placeholders for a
// concrete segment.
func ExpandTemplate(tmpl, repID string, time, number uint64) string {
	s := strings.Replace(tmpl, "$RepresentationID$", repID, 1)
	s = strings.Replace(s, "$Time$", strconv.FormatUint(time, 10), 1)
	s = strings.Replace(s, "$Number$", strconv.FormatUint(number, 10), 1)
	return s
}
