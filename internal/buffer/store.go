// Package buffer implements the time-interval cue store backing a single
// rendering session. It keeps an ordered, non-overlapping sequence of cue
// groups and resolves overlap between newly arrived and previously buffered
// content with tolerance-based boundary comparison.
package buffer

import (
	"fmt"
	"math"
	"slices"

	"streamplane/internal/models"
)

// Tolerance is the window, in seconds, under which two time boundaries are
// treated as equal. Segment boundaries rarely line up exactly after
// float64 timescale conversion, so near-equal boundaries snap together
// instead of leaving sliver groups behind.
const Tolerance = 0.2

// Store holds buffered cue groups for one representation of one session.
// It is created per session, mutated only by Insert, queried only by Get,
// and discarded when the session ends. The store performs no internal
// locking; the owning session serializes access.
type Store struct {
	groups []*models.CueGroup
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= Tolerance
}

// Get returns the cue covering time t, or nil when t falls in a gap.
// Groups are scanned ascending; t may fall inside a group's span but in a
// sub-gap between its cues, which is also an absence.
func (s *Store) Get(t float64) *models.Cue {
	for _, g := range s.groups {
		if g.End <= t {
			continue
		}
		if t < g.Start {
			return nil
		}
		for _, c := range g.Cues {
			if c.Start <= t && t < c.End {
				return c
			}
		}
		return nil
	}
	return nil
}

// Groups returns the buffered groups in ascending order. The returned
// slice is a snapshot; the groups themselves are shared.
func (s *Store) Groups() []*models.CueGroup {
	return slices.Clone(s.groups)
}

// Insert adds the cue group [start, end) to the store, resolving overlap
// against previously buffered groups. Newly arrived content supersedes
// older content where their ranges collide; boundaries within Tolerance of
// each other are snapped together. Degenerate ranges are a caller error
// and are rejected without touching the store.
func (s *Store) Insert(cues []*models.Cue, start, end float64) error {
	if start >= end {
		return fmt.Errorf("degenerate cue group range [%v, %v)", start, end)
	}
	grp := &models.CueGroup{Start: start, End: end, Cues: cues}

	// Locate the first existing group ending after the new start. Everything
	// before it is untouched by this insertion.
	i := slices.IndexFunc(s.groups, func(g *models.CueGroup) bool {
		return g.End > start
	})
	if i < 0 {
		// The new group starts after everything already buffered.
		s.groups = append(s.groups, grp)
		return nil
	}
	g := s.groups[i]

	switch {
	case nearlyEqual(start, g.Start):
		s.insertAtSharedStart(grp, i)
	case start < g.Start:
		s.insertBefore(grp, i)
	default: // start strictly inside g
		s.insertInside(grp, i)
	}
	return nil
}

// insertAtSharedStart handles a new group whose start coincides (within
// tolerance) with the start of the first overlapped group.
func (s *Store) insertAtSharedStart(grp *models.CueGroup, i int) {
	g := s.groups[i]
	end := grp.End

	switch {
	case nearlyEqual(end, g.End):
		// Same range: the new group fully supersedes g.
		s.groups[i] = grp
	case end < g.End:
		// Shorter: keep the tail of g after the new end.
		g.Cues = cuesAfter(g.Cues, end)
		g.Start = end
		s.groups = slices.Insert(s.groups, i, grp)
	default:
		// Longer: the new group swallows g and possibly groups after it.
		s.replaceFrom(grp, i)
	}
}

// replaceFrom drops the groups from index i that the new group fully
// covers and splices the new group in front of the first survivor.
func (s *Store) replaceFrom(grp *models.CueGroup, i int) {
	end := grp.End
	j := i
	for j < len(s.groups) && s.groups[j].End < end && !nearlyEqual(s.groups[j].End, end) {
		j++
	}
	if j == len(s.groups) {
		// Everything from i on is covered; the new group becomes the tail.
		s.groups = append(s.groups[:i], grp)
		return
	}
	b := s.groups[j]
	if nearlyEqual(b.End, end) {
		// The boundary group ends where the new one does: replaced as well.
		s.groups = slices.Delete(s.groups, i, j+1)
		s.groups = slices.Insert(s.groups, i, grp)
		return
	}
	b.Cues = cuesAfter(b.Cues, end)
	b.Start = end
	s.groups = slices.Delete(s.groups, i, j)
	s.groups = slices.Insert(s.groups, i, grp)
}

// insertBefore handles a new group starting strictly before the first
// overlapped group.
func (s *Store) insertBefore(grp *models.CueGroup, i int) {
	g := s.groups[i]
	end := grp.End

	switch {
	case nearlyEqual(end, g.Start):
		// Touching: snap the boundary to the new end.
		g.Start = end
	case end > g.Start:
		// Overlapping head of g: the new content wins there.
		g.Cues = cuesAfter(g.Cues, end)
		g.Start = end
	}
	// end < g.Start needs no adjustment: the ranges are disjoint.
	s.groups = slices.Insert(s.groups, i, grp)
}

// insertInside handles a new group starting strictly inside an existing
// group.
func (s *Store) insertInside(grp *models.CueGroup, i int) {
	g := s.groups[i]
	start, end := grp.Start, grp.End

	if end > g.End || nearlyEqual(end, g.End) {
		// The new group takes over from start onward.
		g.Cues = cuesBefore(g.Cues, start)
		g.End = start
		s.groups = slices.Insert(s.groups, i+1, grp)
		return
	}
	// Fully contained. The group is replaced wholesale; buffered content in
	// [g.Start, start) and [end, g.End) is discarded rather than split into
	// surrounding groups. Known simplification, kept for compatibility.
	s.groups[i] = grp
}

// cuesAfter returns the cues starting at or after t. A cue straddling t is
// dropped: the caller is about to move the group start to t, and a
// straddler would fall outside the adjusted range.
func cuesAfter(cues []*models.Cue, t float64) []*models.Cue {
	for i, c := range cues {
		if c.Start >= t {
			return cues[i:]
		}
	}
	return nil
}

// cuesBefore returns the cues ending at or before t, the mirror of
// cuesAfter for a group whose end is about to move to t.
func cuesBefore(cues []*models.Cue, t float64) []*models.Cue {
	for i, c := range cues {
		if c.End > t {
			return cues[:i]
		}
	}
	return cues
}
