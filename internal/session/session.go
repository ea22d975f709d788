// Package session owns the per-stream state: one segment index and one cue
// buffer per representation, a schedule loop deciding what to fetch next,
// and a result loop feeding decoded cues into the buffers. The buffer and
// index cores perform no locking of their own; every touch goes through
// the session mutex.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"streamplane/internal/buffer"
	"streamplane/internal/cache"
	"streamplane/internal/config"
	"streamplane/internal/fetch"
	"streamplane/internal/index"
	"streamplane/internal/logger"
	"streamplane/internal/models"
)

const (
	// fetchHorizon is how far past the playhead segments are scheduled,
	// in seconds.
	fetchHorizon = 30.0
	// keepBehind is how far behind the playhead segments stay active for
	// the cache, in seconds.
	keepBehind = 10.0

	downloadWorkers = 4
)

// CueDecoder turns a fetched segment payload into cues, given the
// segment's declared range in seconds. Subtitle format decoding is a
// collaborator concern; the session only routes its output into the
// buffer store.
type CueDecoder func(data []byte, start, end float64) ([]*models.Cue, error)

// TimeRange is a buffered [Start, End) span in seconds.
type TimeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// track ties one representation's index to its cue buffer.
type track struct {
	rep   config.Representation
	idx   index.SegmentIndex
	store *buffer.Store
}

// StreamSession holds all state for one playing stream.
type StreamSession struct {
	StreamID string
	BaseURL  string
	Logger   logger.Logger

	downloader *fetch.Downloader
	segCache   *cache.SegmentCache
	decoder    CueDecoder

	mutex       sync.RWMutex
	tracks      map[string]*track
	queued      map[string]struct{}
	playhead    float64
	resultsChan chan fetch.DownloadResult

	ctx    context.Context
	cancel context.CancelFunc
}

// Manager owns every active stream session.
type Manager struct {
	mutex    sync.RWMutex
	sessions map[string]*StreamSession
	logger   logger.Logger
	cfg      *config.Config
	client   *fetch.Client
	resolver *index.Resolver
	segCache *cache.SegmentCache
	decoder  CueDecoder
}

// NewManager creates a session manager. The resolver registers only the
// index variants the config enables.
func NewManager(log logger.Logger, cfg *config.Config, client *fetch.Client, decoder CueDecoder) (*Manager, error) {
	resolver, err := index.NewResolver(cfg.IndexTypes...)
	if err != nil {
		return nil, fmt.Errorf("failed to build index resolver: %w", err)
	}
	m := &Manager{
		sessions: make(map[string]*StreamSession),
		logger:   log,
		cfg:      cfg,
		client:   client,
		resolver: resolver,
		decoder:  decoder,
	}
	m.segCache = cache.New(log, m.ActiveSegmentKeys)
	return m, nil
}

// Start begins the background workers of the manager's components.
func (m *Manager) Start() {
	m.segCache.Start()
}

// Stop shuts down all sessions and background workers.
func (m *Manager) Stop() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, s := range m.sessions {
		s.Stop()
	}
	m.segCache.Stop()
	m.logger.Infof("Session manager stopped")
}

// GetOrCreateSession retrieves an existing session or builds one from the
// configured stream entry.
func (m *Manager) GetOrCreateSession(streamId string) (*StreamSession, error) {
	m.mutex.RLock()
	s, found := m.sessions[streamId]
	m.mutex.RUnlock()
	if found {
		return s, nil
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	if s, found = m.sessions[streamId]; found {
		return s, nil
	}

	var streamCfg *config.Stream
	for i := range m.cfg.Streams {
		if m.cfg.Streams[i].Id == streamId {
			streamCfg = &m.cfg.Streams[i]
			break
		}
	}
	if streamCfg == nil {
		return nil, fmt.Errorf("configuration for stream %q not found", streamId)
	}

	s, err := m.newSession(streamCfg)
	if err != nil {
		return nil, err
	}
	m.sessions[streamId] = s
	s.Start()
	m.logger.Infof("Created session for stream %s (%s)", streamCfg.Name, streamId)
	return s, nil
}

func (m *Manager) newSession(streamCfg *config.Stream) (*StreamSession, error) {
	tracks := make(map[string]*track, len(streamCfg.Representations))
	for i := range streamCfg.Representations {
		rep := streamCfg.Representations[i]
		// Each track gets its own metadata copy: AddSegmentInfos mutates
		// it in place for the life of the session.
		meta := rep.Index
		idx, err := m.resolver.Resolve(&meta)
		if err != nil {
			return nil, fmt.Errorf("stream %q representation %q: %w", streamCfg.Id, rep.Id, err)
		}
		tracks[rep.Id] = &track{rep: rep, idx: idx, store: buffer.New()}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &StreamSession{
		StreamID:    streamCfg.Id,
		BaseURL:     streamCfg.BaseURL,
		Logger:      m.logger,
		downloader:  fetch.NewDownloader(m.client.HTTPClient(), m.logger, m.client.UserAgent(), downloadWorkers),
		segCache:    m.segCache,
		decoder:     m.decoder,
		tracks:      tracks,
		queued:      make(map[string]struct{}),
		resultsChan: make(chan fetch.DownloadResult, 100),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// ActiveSegmentKeys collects the descriptor IDs every session still needs,
// keeping them safe from cache eviction.
func (m *Manager) ActiveSegmentKeys() map[string]struct{} {
	active := make(map[string]struct{})
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, s := range m.sessions {
		s.mutex.RLock()
		from := s.playhead - keepBehind
		to := s.playhead + fetchHorizon
		for _, tr := range s.tracks {
			active[tr.idx.InitSegment(tr.rep.Id).ID] = struct{}{}
			for _, seg := range tr.idx.Segments(tr.rep.Id, from, to) {
				active[seg.ID] = struct{}{}
			}
		}
		s.mutex.RUnlock()
	}
	return active
}

// Start kicks off the session's background loops.
func (s *StreamSession) Start() {
	s.queueInitSegments()
	go s.scheduleLoop()
	go s.playheadLoop()
	go s.resultLoop()
}

// Stop terminates the background loops.
func (s *StreamSession) Stop() {
	s.cancel()
	s.downloader.Stop()
}

func (s *StreamSession) queueInitSegments() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, tr := range s.tracks {
		desc := tr.idx.InitSegment(tr.rep.Id)
		if desc.MediaTemplate == "" {
			continue
		}
		s.queueLocked(desc)
	}
}

// queueLocked submits an unfetched descriptor to the download pool.
// Callers hold the session mutex.
func (s *StreamSession) queueLocked(desc models.SegmentDescriptor) {
	if _, found := s.segCache.Get(desc.ID); found {
		return
	}
	if _, pending := s.queued[desc.ID]; pending {
		return
	}
	path := index.ExpandTemplate(desc.MediaTemplate, desc.RepID, desc.Time, desc.Number)
	url, err := fetch.ResolveURL(s.BaseURL, path)
	if err != nil {
		s.Logger.Warnf("Failed to build URL for segment %s: %v", desc.ID, err)
		return
	}
	s.queued[desc.ID] = struct{}{}
	s.Logger.Debugf("Queueing segment %s from %s", desc.ID, url)
	s.downloader.QueueDownload(fetch.DownloadTask{
		Descriptor: desc,
		URL:        url,
		Result:     s.resultsChan,
	})
}

func (s *StreamSession) scheduleLoop() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.Logger.Infof("Schedule loop for %s stopped", s.StreamID)
			return
		case <-ticker.C:
			s.scheduleNextSegments()
		}
	}
}

func (s *StreamSession) scheduleNextSegments() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	from := s.playhead
	to := s.playhead + fetchHorizon
	for _, tr := range s.tracks {
		if tr.idx.ShouldRefresh(from, to) {
			// Manifest refresh is a collaborator concern; flag it.
			s.Logger.Warnf("Representation %s of %s needs a manifest refresh for [%.1f, %.1f]",
				tr.rep.Id, s.StreamID, from, to)
		}
		for _, seg := range tr.idx.Segments(tr.rep.Id, from, to) {
			s.queueLocked(seg)
		}
	}
}

func (s *StreamSession) playheadLoop() {
	const tick = 500 * time.Millisecond
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.Logger.Infof("Playhead loop for %s stopped", s.StreamID)
			return
		case <-ticker.C:
			s.advancePlayhead(tick.Seconds())
		}
	}
}

func (s *StreamSession) advancePlayhead(dt float64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.playhead += dt
	for _, tr := range s.tracks {
		if pos := tr.idx.CheckDiscontinuity(s.playhead); pos != index.NoDiscontinuity && pos > s.playhead {
			s.Logger.Infof("Skipping playhead of %s over a hole: %.2f -> %.2f", s.StreamID, s.playhead, pos)
			s.playhead = pos
			break
		}
	}
}

func (s *StreamSession) resultLoop() {
	for result := range s.resultsChan {
		desc := result.Task.Descriptor

		s.mutex.Lock()
		delete(s.queued, desc.ID)
		s.mutex.Unlock()

		if result.Error != nil {
			s.Logger.Warnf("Failed to download segment %s: %v", desc.ID, result.Error)
			continue
		}
		s.segCache.Set(desc.ID, result.Data)
		if desc.IsInit {
			s.Logger.Infof("Cached init segment for rep %s", desc.RepID)
			continue
		}
		s.ingestSegment(desc, result.Data)
	}
	s.Logger.Infof("Result loop for %s stopped", s.StreamID)
}

// ingestSegment decodes an arrived segment into cues and merges them into
// the representation's buffer.
func (s *StreamSession) ingestSegment(desc models.SegmentDescriptor, data []byte) {
	if s.decoder == nil || desc.Timescale == 0 {
		return
	}
	start := float64(desc.Time) / float64(desc.Timescale)
	end := start + float64(desc.Duration)/float64(desc.Timescale)

	cues, err := s.decoder(data, start, end)
	if err != nil {
		s.Logger.Warnf("Failed to decode cues of segment %s: %v", desc.ID, err)
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	tr, found := s.tracks[desc.RepID]
	if !found {
		s.Logger.Warnf("Segment %s arrived for unknown representation %s", desc.ID, desc.RepID)
		return
	}
	if err := tr.store.Insert(cues, start, end); err != nil {
		s.Logger.Warnf("Failed to buffer segment %s: %v", desc.ID, err)
		return
	}
	s.Logger.Debugf("Buffered segment %s: %d cues in [%.2f, %.2f)", desc.ID, len(cues), start, end)
}

// CueAt returns the cue covering time t on the given representation, or
// nil when none is buffered there.
func (s *StreamSession) CueAt(repId string, t float64) (*models.Cue, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	tr, found := s.tracks[repId]
	if !found {
		return nil, fmt.Errorf("representation %q not found in stream %q", repId, s.StreamID)
	}
	return tr.store.Get(t), nil
}

// BufferedRanges returns the buffered spans of the given representation.
func (s *StreamSession) BufferedRanges(repId string) ([]TimeRange, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	tr, found := s.tracks[repId]
	if !found {
		return nil, fmt.Errorf("representation %q not found in stream %q", repId, s.StreamID)
	}
	groups := tr.store.Groups()
	ranges := make([]TimeRange, 0, len(groups))
	for _, g := range groups {
		ranges = append(ranges, TimeRange{Start: g.Start, End: g.End})
	}
	return ranges, nil
}

// SegmentsIn enumerates the descriptors needed for [from, to] on the given
// representation.
func (s *StreamSession) SegmentsIn(repId string, from, to float64) ([]models.SegmentDescriptor, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	tr, found := s.tracks[repId]
	if !found {
		return nil, fmt.Errorf("representation %q not found in stream %q", repId, s.StreamID)
	}
	return tr.idx.Segments(repId, from, to), nil
}

// AddSegmentInfos feeds discovered segment metadata to a representation's
// index and reports whether the index changed.
func (s *StreamSession) AddSegmentInfos(repId string, info index.NewSegmentInfo) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	tr, found := s.tracks[repId]
	if !found {
		return false, fmt.Errorf("representation %q not found in stream %q", repId, s.StreamID)
	}
	return tr.idx.AddSegmentInfos(info), nil
}

// Playhead returns the session's current playback position in seconds.
func (s *StreamSession) Playhead() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.playhead
}

// Representations lists the representation IDs of the session.
func (s *StreamSession) Representations() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	ids := make([]string, 0, len(s.tracks))
	for id := range s.tracks {
		ids = append(ids, id)
	}
	return ids
}
