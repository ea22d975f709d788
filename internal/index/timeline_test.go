package index_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamplane/internal/index"
	"streamplane/internal/models"
)

// timelineMeta: segments at ticks [0,20) [20,40) [40,70), a hole, then
// [100,120), timescale 10.
func timelineMeta() *index.ManifestIndex {
	return &index.ManifestIndex{
		Type:      index.TypeTimeline,
		Timescale: 10,
		Media:     "seg-$Time$.m4s",
		Timeline: []index.TimelineElement{
			{TS: 0, D: 20, R: 1},
			{TS: 40, D: 30, R: 0},
			{TS: 100, D: 20, R: 0},
		},
	}
}

func TestTimeline_Segments(t *testing.T) {
	idx := index.NewTimeline(timelineMeta())

	t.Run("expands repeat runs", func(t *testing.T) {
		segs := idx.Segments("r", 0, 3.9)
		require.Len(t, segs, 2)
		assert.Equal(t, uint64(0), segs[0].Time)
		assert.Equal(t, uint64(20), segs[0].Duration)
		assert.Equal(t, uint64(20), segs[1].Time)
	})

	t.Run("covers the requested window", func(t *testing.T) {
		segs := idx.Segments("r", 0, 7)
		require.Len(t, segs, 3)
		assert.Equal(t, uint64(40), segs[2].Time)
		assert.Equal(t, uint64(30), segs[2].Duration)
	})

	t.Run("reaches past the hole", func(t *testing.T) {
		segs := idx.Segments("r", 9, 11)
		require.Len(t, segs, 1)
		assert.Equal(t, uint64(100), segs[0].Time)
	})

	t.Run("window clamps to timeline extent", func(t *testing.T) {
		segs := idx.Segments("r", 0, 1e6)
		assert.Len(t, segs, 4)
	})

	t.Run("inverted window is empty", func(t *testing.T) {
		assert.Empty(t, idx.Segments("r", 5, 1))
	})

	t.Run("empty timeline yields nothing", func(t *testing.T) {
		empty := index.NewTimeline(&index.ManifestIndex{Type: index.TypeTimeline, Timescale: 10})
		assert.Empty(t, empty.Segments("r", 0, 100))
	})
}

func TestTimeline_Positions(t *testing.T) {
	idx := index.NewTimeline(timelineMeta())

	first, ok := idx.FirstPosition()
	require.True(t, ok)
	assert.Equal(t, 0.0, first)

	last, ok := idx.LastPosition()
	require.True(t, ok)
	assert.Equal(t, 12.0, last, "end of the last element run")

	empty := index.NewTimeline(&index.ManifestIndex{Type: index.TypeTimeline, Timescale: 10})
	_, ok = empty.FirstPosition()
	assert.False(t, ok)
	_, ok = empty.LastPosition()
	assert.False(t, ok)
}

func TestTimeline_ShouldRefresh(t *testing.T) {
	idx := index.NewTimeline(timelineMeta())

	assert.False(t, idx.ShouldRefresh(0, 5))
	assert.False(t, idx.ShouldRefresh(0, 12))
	assert.True(t, idx.ShouldRefresh(0, 12.5), "window exceeds the known timeline")
	assert.False(t, idx.ShouldRefresh(5, 1), "inverted window never needs a refresh")

	empty := index.NewTimeline(&index.ManifestIndex{Type: index.TypeTimeline, Timescale: 10})
	assert.True(t, empty.ShouldRefresh(0, 1), "nothing known yet")
}

func TestTimeline_CheckDiscontinuity(t *testing.T) {
	idx := index.NewTimeline(timelineMeta())

	t.Run("approaching the hole", func(t *testing.T) {
		assert.Equal(t, 10.0, idx.CheckDiscontinuity(6.5), "next content starts at tick 100")
	})

	t.Run("well before the hole", func(t *testing.T) {
		assert.Equal(t, float64(index.NoDiscontinuity), idx.CheckDiscontinuity(4.0))
	})

	t.Run("contiguous elements", func(t *testing.T) {
		assert.Equal(t, float64(index.NoDiscontinuity), idx.CheckDiscontinuity(1.5))
	})

	t.Run("inside the last element", func(t *testing.T) {
		assert.Equal(t, float64(index.NoDiscontinuity), idx.CheckDiscontinuity(11.5))
	})
}

func TestTimeline_AddSegmentInfos(t *testing.T) {
	t.Run("rescales into the index timescale", func(t *testing.T) {
		meta := &index.ManifestIndex{Type: index.TypeTimeline, Timescale: 1}
		idx := index.NewTimeline(meta)

		changed := idx.AddSegmentInfos(index.NewSegmentInfo{Time: 0, Duration: 4, Timescale: 2, Count: 0})
		require.True(t, changed)
		require.Len(t, meta.Timeline, 1)
		assert.Equal(t, index.TimelineElement{TS: 0, D: 2, R: 0}, meta.Timeline[0])
	})

	t.Run("same timescale appends verbatim", func(t *testing.T) {
		meta := timelineMeta()
		idx := index.NewTimeline(meta)
		rng := &models.ByteRange{Start: 100, End: 199}

		changed := idx.AddSegmentInfos(index.NewSegmentInfo{Time: 120, Duration: 20, Timescale: 10, Count: 2, Range: rng})
		require.True(t, changed)
		el := meta.Timeline[len(meta.Timeline)-1]
		assert.Equal(t, uint64(120), el.TS)
		assert.Equal(t, uint64(20), el.D)
		assert.Equal(t, uint32(2), el.R)
		assert.Equal(t, rng, el.Range)

		last, ok := idx.LastPosition()
		require.True(t, ok)
		assert.Equal(t, 18.0, last, "three new segments extend the timeline")
	})
}
