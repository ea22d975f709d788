package fetch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamplane/internal/fetch"
	"streamplane/internal/logger"
)

func TestResolveURL(t *testing.T) {
	testCases := []struct {
		name     string
		base     string
		media    string
		expected string
	}{
		{
			name:     "relative path against directory base",
			base:     "http://origin.example/live/channel/",
			media:    "video/seg_42.m4s",
			expected: "http://origin.example/live/channel/video/seg_42.m4s",
		},
		{
			name:     "relative path replaces last base element",
			base:     "http://origin.example/live/manifest.mpd",
			media:    "seg_42.m4s",
			expected: "http://origin.example/live/seg_42.m4s",
		},
		{
			name:     "absolute media path wins",
			base:     "http://origin.example/live/channel/",
			media:    "http://cdn.example/seg_42.m4s",
			expected: "http://cdn.example/seg_42.m4s",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resolved, err := fetch.ResolveURL(tc.base, tc.media)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, resolved)
		})
	}
}

func TestResolveURL_InvalidBase(t *testing.T) {
	_, err := fetch.ResolveURL("http://origin.example/%zz", "seg.m4s")
	assert.Error(t, err)
}

func TestNewClient(t *testing.T) {
	c := fetch.NewClient(logger.NewNop(), "streamplane/1.0")
	assert.Equal(t, "streamplane/1.0", c.UserAgent())
	assert.NotNil(t, c.HTTPClient())
}
