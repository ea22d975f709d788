package index_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamplane/internal/index"
)

func TestResolver_Resolve(t *testing.T) {
	r, err := index.NewResolver()
	require.NoError(t, err)

	t.Run("resolves every registered variant", func(t *testing.T) {
		for _, tag := range []string{index.TypeTemplate, index.TypeTimeline, index.TypeBase, index.TypeList} {
			idx, err := r.Resolve(&index.ManifestIndex{Type: tag, Timescale: 1, Duration: 1})
			require.NoError(t, err, "tag %q", tag)
			require.NotNil(t, idx)
		}
	})

	t.Run("variant dispatch", func(t *testing.T) {
		idx, err := r.Resolve(&index.ManifestIndex{Type: index.TypeTemplate, Timescale: 1, Duration: 1})
		require.NoError(t, err)
		_, isTemplate := idx.(*index.TemplateIndex)
		assert.True(t, isTemplate)
	})

	t.Run("unknown tag fails predictably", func(t *testing.T) {
		_, err := r.Resolve(&index.ManifestIndex{Type: "smooth"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, index.ErrUnknownIndexType))
	})
}

func TestResolver_FeatureGating(t *testing.T) {
	r, err := index.NewResolver(index.TypeTemplate, index.TypeList)
	require.NoError(t, err)

	_, err = r.Resolve(&index.ManifestIndex{Type: index.TypeTemplate, Timescale: 1, Duration: 1})
	assert.NoError(t, err)

	_, err = r.Resolve(&index.ManifestIndex{Type: index.TypeTimeline, Timescale: 1})
	assert.True(t, errors.Is(err, index.ErrUnknownIndexType), "disabled variant is not registered")

	t.Run("unknown enabled type is a configuration error", func(t *testing.T) {
		_, err := index.NewResolver("bogus")
		assert.Error(t, err)
	})

	t.Run("duplicate enabled type is a configuration error", func(t *testing.T) {
		_, err := index.NewResolver(index.TypeList, index.TypeList)
		assert.Error(t, err)
	})
}
