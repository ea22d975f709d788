package models

// ByteRange is an inclusive byte range within a resource, used for indexed
// media where several segments live in one file.
type ByteRange struct {
	Start uint64
	End   uint64
}

// SegmentDescriptor describes one fetchable media segment, either an
// initialization segment or a media segment. Descriptors are immutable
// values produced on demand by a segment index; the core never retains them.
type SegmentDescriptor struct {
	// ID uniquely identifies the segment within its representation.
	// For media segments this is the cache key.
	ID string
	// RepID is the ID of the representation this segment belongs to.
	RepID string
	// Number is the segment number, where the indexing scheme has one.
	Number uint64
	// Time is the start time of the segment in Timescale units.
	Time uint64
	// Duration is the duration of the segment in Timescale units.
	// Zero for initialization segments.
	Duration uint64
	// Timescale is the number of time units per second for Time/Duration.
	Timescale uint64
	// Range is the byte range holding the segment media, if any.
	Range *ByteRange
	// IndexRange is the byte range holding the segment index (sidx), if any.
	IndexRange *ByteRange
	// IsInit indicates an initialization segment.
	IsInit bool
	// MediaTemplate is the URL template the segment's path is expanded from.
	MediaTemplate string
}
