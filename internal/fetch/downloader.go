package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"streamplane/internal/logger"
	"streamplane/internal/models"
)

// DownloadTask asks the pool to fetch one segment and deliver the outcome
// on Result.
type DownloadTask struct {
	Descriptor models.SegmentDescriptor
	URL        string
	Result     chan<- DownloadResult
}

// DownloadResult carries the fetched payload or the final error after all
// retries.
type DownloadResult struct {
	Task  DownloadTask
	Data  []byte
	Error error
}

// Downloader is a fixed-size worker pool downloading segments with retry.
type Downloader struct {
	httpClient *http.Client
	logger     logger.Logger
	userAgent  string
	tasks      chan DownloadTask
	wg         sync.WaitGroup
}

// NewDownloader starts a pool of the given size over the shared client.
func NewDownloader(client *http.Client, log logger.Logger, userAgent string, workers int) *Downloader {
	d := &Downloader{
		httpClient: client,
		logger:     log,
		userAgent:  userAgent,
		tasks:      make(chan DownloadTask, 100),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// QueueDownload submits a task to the pool.
func (d *Downloader) QueueDownload(task DownloadTask) {
	d.tasks <- task
}

// Stop drains the queue and waits for the workers to finish.
func (d *Downloader) Stop() {
	close(d.tasks)
	d.wg.Wait()
}

func (d *Downloader) worker() {
	defer d.wg.Done()
	for task := range d.tasks {
		data, err := d.download(task)
		task.Result <- DownloadResult{Task: task, Data: data, Error: err}
	}
}

// download fetches one segment with per-attempt timeout and bounded
// retries. A descriptor byte range turns into an HTTP Range request.
func (d *Downloader) download(task DownloadTask) ([]byte, error) {
	const maxRetries = 3
	const retryDelay = 100 * time.Millisecond
	desc := task.Descriptor
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		data, err := d.attempt(ctx, task)
		cancel()
		if err == nil {
			d.logger.Debugf("Downloaded segment %s (%d bytes)", desc.ID, len(data))
			return data, nil
		}
		lastErr = fmt.Errorf("download attempt %d for segment %s: %w", attempt, desc.ID, err)
		d.logger.Warnf("%v", lastErr)
		time.Sleep(retryDelay)
	}
	return nil, fmt.Errorf("failed to download segment %s after %d attempts: %w", desc.ID, maxRetries, lastErr)
}

func (d *Downloader) attempt(ctx context.Context, task DownloadTask) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", task.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}
	if r := task.Descriptor.Range; r != nil {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", r.Start, r.End))
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
