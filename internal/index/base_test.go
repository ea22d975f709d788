package index_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamplane/internal/index"
)

func baseMeta() *index.ManifestIndex {
	return &index.ManifestIndex{
		Type:      index.TypeBase,
		Timescale: 10,
		Media:     "media.mp4",
	}
}

func TestBase_DelegatesEnumeration(t *testing.T) {
	meta := baseMeta()
	idx := index.NewBase(meta)

	require.True(t, idx.AddSegmentInfos(index.NewSegmentInfo{Time: 0, Duration: 20, Timescale: 10, Count: 1}))
	require.True(t, idx.AddSegmentInfos(index.NewSegmentInfo{Time: 40, Duration: 20, Timescale: 10, Count: 0}))

	segs := idx.Segments("r", 0, 5)
	require.Len(t, segs, 3)
	assert.Equal(t, uint64(0), segs[0].Time)
	assert.Equal(t, uint64(20), segs[1].Time)
	assert.Equal(t, uint64(40), segs[2].Time)

	first, ok := idx.FirstPosition()
	require.True(t, ok)
	assert.Equal(t, 0.0, first)
	last, ok := idx.LastPosition()
	require.True(t, ok)
	assert.Equal(t, 6.0, last)
}

func TestBase_DiscoveryPolicy(t *testing.T) {
	idx := index.NewBase(baseMeta())

	require.True(t, idx.AddSegmentInfos(index.NewSegmentInfo{Time: 0, Duration: 20, Timescale: 10, Count: 0}))

	t.Run("already discovered metadata is refused", func(t *testing.T) {
		assert.False(t, idx.AddSegmentInfos(index.NewSegmentInfo{Time: 0, Duration: 20, Timescale: 10, Count: 0}))
	})

	t.Run("new metadata extends the timeline", func(t *testing.T) {
		assert.True(t, idx.AddSegmentInfos(index.NewSegmentInfo{Time: 20, Duration: 20, Timescale: 10, Count: 0}))
	})

	t.Run("rescales before comparing", func(t *testing.T) {
		// Tick 10 at timescale 5 is tick 20 at timescale 10: not new.
		assert.False(t, idx.AddSegmentInfos(index.NewSegmentInfo{Time: 10, Duration: 10, Timescale: 5, Count: 0}))
	})
}

func TestBase_NeverRefreshes(t *testing.T) {
	idx := index.NewBase(baseMeta())
	require.True(t, idx.AddSegmentInfos(index.NewSegmentInfo{Time: 0, Duration: 20, Timescale: 10, Count: 0}))

	assert.False(t, idx.ShouldRefresh(0, 1e6), "the resource is static, discovery is in-band")
}
