package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamplane/internal/api"
	"streamplane/internal/config"
	"streamplane/internal/fetch"
	"streamplane/internal/index"
	"streamplane/internal/logger"
	"streamplane/internal/session"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Streams: []config.Stream{{
			Name:    "News",
			Id:      "news",
			BaseURL: "http://127.0.0.1:0/",
			Representations: []config.Representation{{
				Id: "sub-en",
				Index: index.ManifestIndex{
					Type:        index.TypeTemplate,
					Timescale:   1,
					Duration:    4,
					StartNumber: 1,
					Media:       "sub-$Number$.vtt",
				},
			}},
		}},
	}
	log := logger.NewNop()
	mgr, err := session.NewManager(log, cfg, fetch.NewClient(log, ""), nil)
	require.NoError(t, err)
	t.Cleanup(mgr.Stop)
	return api.New(mgr, log)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAPI_Status(t *testing.T) {
	h := newTestHandler(t)
	rec := get(t, h, "/streams/news/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "news", status["stream"])
}

func TestAPI_Segments(t *testing.T) {
	h := newTestHandler(t)

	t.Run("enumerates the window", func(t *testing.T) {
		rec := get(t, h, "/streams/news/reps/sub-en/segments?from=0&to=10")
		require.Equal(t, http.StatusOK, rec.Code)

		var segs []map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &segs))
		assert.Len(t, segs, 3)
	})

	t.Run("missing parameters", func(t *testing.T) {
		rec := get(t, h, "/streams/news/reps/sub-en/segments?from=0")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown representation", func(t *testing.T) {
		rec := get(t, h, "/streams/news/reps/nope/segments?from=0&to=10")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAPI_Cue(t *testing.T) {
	h := newTestHandler(t)

	t.Run("no cue buffered yet", func(t *testing.T) {
		rec := get(t, h, "/streams/news/reps/sub-en/cue?t=2")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("invalid time", func(t *testing.T) {
		rec := get(t, h, "/streams/news/reps/sub-en/cue?t=abc")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAPI_Buffered(t *testing.T) {
	h := newTestHandler(t)
	rec := get(t, h, "/streams/news/reps/sub-en/buffered")
	require.Equal(t, http.StatusOK, rec.Code)

	var ranges []session.TimeRange
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranges))
	assert.Empty(t, ranges)
}

func TestAPI_UnknownStream(t *testing.T) {
	h := newTestHandler(t)
	rec := get(t, h, "/streams/nope/status")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
