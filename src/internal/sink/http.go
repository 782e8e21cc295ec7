// FILE: logfeeder/src/internal/sink/http.go
package sink

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/core"
	"logfeeder/src/internal/format"
	"logfeeder/src/internal/version"

	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
)

// HTTPSink forwards log entries to a remote HTTP endpoint in batches.
type HTTPSink struct {
	name   string
	config *config.HTTPOutputOptions

	client    *fasthttp.Client
	queue     *queue
	formatter format.Formatter
	logger    *log.Logger

	// Batching
	batch   []core.LogEntry
	batchMu sync.Mutex
	sends   sync.WaitGroup

	// Statistics
	totalBatches  atomic.Uint64
	failedBatches atomic.Uint64
	lastBatchSent atomic.Value // time.Time
}

// NewHTTPSink creates a new HTTP sink. opts must have defaults applied.
func NewHTTPSink(name string, opts *config.HTTPOutputOptions, logger *log.Logger, formatter format.Formatter) (*HTTPSink, error) {
	if opts == nil {
		return nil, fmt.Errorf("HTTP sink options cannot be nil")
	}

	h := &HTTPSink{
		name:      name,
		config:    opts,
		queue:     newQueue(opts.BufferSize),
		batch:     make([]core.LogEntry, 0, opts.BatchSize),
		logger:    logger,
		formatter: formatter,
	}
	h.lastBatchSent.Store(time.Time{})

	h.client = &fasthttp.Client{
		MaxConnsPerHost:               10,
		MaxIdleConnDuration:           10 * time.Second,
		ReadTimeout:                   time.Duration(opts.Timeout) * time.Second,
		WriteTimeout:                  time.Duration(opts.Timeout) * time.Second,
		DisableHeaderNamesNormalizing: true,
	}

	if strings.HasPrefix(opts.URL, "https://") && opts.InsecureSkipVerify {
		h.client.TLSConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return h, nil
}

func (h *HTTPSink) Name() string {
	return h.name
}

func (h *HTTPSink) Write(entry *core.LogEntry, _ string) error {
	return h.queue.enqueue(entry)
}

// Start begins the processing and batching loops.
func (h *HTTPSink) Start(ctx context.Context) error {
	h.queue.run(ctx, h.add)

	h.queue.wg.Add(1)
	go h.batchTimer(ctx)

	h.logger.Info("msg", "HTTP sink started",
		"component", "http_sink",
		"name", h.name,
		"url", h.config.URL,
		"batch_size", h.config.BatchSize,
		"batch_delay_ms", h.config.BatchDelayMS)
	return nil
}

// Stop gracefully shuts down the sink, sending any remaining batched entries.
func (h *HTTPSink) Stop() {
	h.queue.stop()

	if batch := h.takeBatch(); len(batch) > 0 {
		h.sendBatch(batch)
	}
	h.sends.Wait()

	h.logger.Info("msg", "HTTP sink stopped",
		"component", "http_sink",
		"name", h.name,
		"total_processed", h.queue.totalProcessed.Load(),
		"total_batches", h.totalBatches.Load(),
		"failed_batches", h.failedBatches.Load())
}

// GetStats returns the sink's statistics.
func (h *HTTPSink) GetStats() SinkStats {
	lastBatch, _ := h.lastBatchSent.Load().(time.Time)

	h.batchMu.Lock()
	pendingEntries := len(h.batch)
	h.batchMu.Unlock()

	return h.queue.stats("http", map[string]any{
		"url":             h.config.URL,
		"batch_size":      h.config.BatchSize,
		"pending_entries": pendingEntries,
		"total_batches":   h.totalBatches.Load(),
		"failed_batches":  h.failedBatches.Load(),
		"last_batch_sent": lastBatch,
	})
}

// add appends an entry to the current batch and sends it once full
func (h *HTTPSink) add(entry core.LogEntry) {
	h.batchMu.Lock()
	h.batch = append(h.batch, entry)
	if int64(len(h.batch)) < h.config.BatchSize {
		h.batchMu.Unlock()
		return
	}
	batch := h.batch
	h.batch = make([]core.LogEntry, 0, h.config.BatchSize)
	h.batchMu.Unlock()

	h.sendAsync(batch)
}

func (h *HTTPSink) takeBatch() []core.LogEntry {
	h.batchMu.Lock()
	defer h.batchMu.Unlock()
	if len(h.batch) == 0 {
		return nil
	}
	batch := h.batch
	h.batch = make([]core.LogEntry, 0, h.config.BatchSize)
	return batch
}

func (h *HTTPSink) sendAsync(batch []core.LogEntry) {
	h.sends.Add(1)
	go func() {
		defer h.sends.Done()
		h.sendBatch(batch)
	}()
}

// batchTimer periodically triggers sending of the current batch.
func (h *HTTPSink) batchTimer(ctx context.Context) {
	defer h.queue.wg.Done()

	ticker := time.NewTicker(time.Duration(h.config.BatchDelayMS) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if batch := h.takeBatch(); len(batch) > 0 {
				h.sendAsync(batch)
			}
		case <-ctx.Done():
			return
		case <-h.queue.done:
			return
		}
	}
}

func (h *HTTPSink) encode(batch []core.LogEntry) ([]byte, error) {
	if jsonFormatter, ok := h.formatter.(*format.JSONFormatter); ok {
		return jsonFormatter.FormatBatch(batch)
	}

	var formatted [][]byte
	for i := range batch {
		entryBytes, err := h.formatter.Format(&batch[i])
		if err != nil {
			h.logger.Error("msg", "Failed to format entry in batch",
				"component", "http_sink",
				"error", err)
			continue
		}
		formatted = append(formatted, entryBytes)
	}
	return bytes.Join(formatted, nil), nil
}

// sendBatch sends a batch of log entries to the remote endpoint with retry logic.
func (h *HTTPSink) sendBatch(batch []core.LogEntry) {
	h.totalBatches.Add(1)
	h.lastBatchSent.Store(time.Now())

	body, err := h.encode(batch)
	if err != nil {
		h.logger.Error("msg", "Failed to format batch",
			"component", "http_sink",
			"error", err,
			"batch_size", len(batch))
		h.failBatch(batch)
		return
	}

	contentType := "text/plain"
	if h.formatter.Name() == "json" {
		contentType = "application/json"
	}

	var lastErr error
	retryDelay := time.Duration(h.config.RetryDelayMS) * time.Millisecond
	timeout := time.Duration(h.config.Timeout) * time.Second

	for attempt := int64(0); attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)

			// Cap at the request timeout, which also guards overflow
			newDelay := time.Duration(float64(retryDelay) * h.config.RetryBackoff)
			if newDelay > timeout || newDelay < retryDelay {
				retryDelay = timeout
			} else {
				retryDelay = newDelay
			}
		}

		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()

		req.SetRequestURI(h.config.URL)
		req.Header.SetMethod(fasthttp.MethodPost)
		req.Header.SetContentType(contentType)
		req.Header.Set("User-Agent", fmt.Sprintf("LogFeeder/%s", version.Short()))
		req.SetBody(body)

		err := h.client.DoTimeout(req, resp, timeout)

		statusCode := resp.StatusCode()
		var responseBody []byte
		if len(resp.Body()) > 0 {
			responseBody = make([]byte, len(resp.Body()))
			copy(responseBody, resp.Body())
		}

		// Release immediately, not deferred
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)

		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			h.logger.Warn("msg", "HTTP request failed",
				"component", "http_sink",
				"attempt", attempt+1,
				"max_retries", h.config.MaxRetries,
				"error", err)
			continue
		}

		if statusCode >= 200 && statusCode < 300 {
			h.logger.Debug("msg", "Batch sent successfully",
				"component", "http_sink",
				"batch_size", len(batch),
				"status_code", statusCode,
				"attempt", attempt+1)
			return
		}

		lastErr = fmt.Errorf("server returned status %d: %s", statusCode, responseBody)

		// Don't retry on 4xx errors (client errors)
		if statusCode >= 400 && statusCode < 500 {
			h.logger.Error("msg", "Batch rejected by server",
				"component", "http_sink",
				"status_code", statusCode,
				"response", string(responseBody),
				"batch_size", len(batch))
			h.failBatch(batch)
			return
		}

		h.logger.Warn("msg", "Server returned error status",
			"component", "http_sink",
			"attempt", attempt+1,
			"status_code", statusCode,
			"response", string(responseBody))
	}

	h.logger.Error("msg", "Failed to send batch after all retries",
		"component", "http_sink",
		"batch_size", len(batch),
		"retries", h.config.MaxRetries,
		"last_error", lastErr)
	h.failBatch(batch)
}

func (h *HTTPSink) failBatch(batch []core.LogEntry) {
	h.failedBatches.Add(1)
	h.queue.totalFailed.Add(uint64(len(batch)))
}
