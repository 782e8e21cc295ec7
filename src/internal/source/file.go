// FILE: logfeeder/src/internal/source/file.go
package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"strconv"
	"sync/atomic"
	"time"

	"logfeeder/src/internal/checkpoint"
	"logfeeder/src/internal/config"
	"logfeeder/src/internal/core"
	"logfeeder/src/internal/input"

	"github.com/cespare/xxhash/v2"
	"github.com/lixenwraith/log"
)

const readBufferSize = 64 * 1024

// fileIdentity ties checkpoints to the file they were taken from
type fileIdentity struct {
	key      string
	checksum string
	size     int64
}

// FileSource tails a single file, resuming from the last checkpoint
type FileSource struct {
	path         string
	key          string
	desc         string
	tail         bool
	checksum     bool
	pollInterval time.Duration
	logger       *log.Logger

	store      checkpoint.Store
	cpInterval time.Duration
	now        func() time.Time

	mu        sync.Mutex
	last      core.InputMarker
	hasMarker bool
	lastSaved time.Time
	ident     fileIdentity

	// Statistics
	totalLines    atomic.Uint64
	rotations     atomic.Uint64
	size          atomic.Int64
	startTime     time.Time
	lastEntryTime atomic.Value // time.Time
}

// NewFileSource creates a file source. The checkpoint key is the absolute path.
func NewFileSource(cfg config.InputConfig, store checkpoint.Store, cpInterval time.Duration, logger *log.Logger) (*FileSource, error) {
	if cfg.Path == "" {
		return nil, core.ConfigError(cfg.ShortDescription(), fmt.Errorf("file input requires 'path'"))
	}
	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, core.ConfigError(cfg.ShortDescription(), fmt.Errorf("invalid path: %w", err))
	}

	poll := time.Duration(cfg.PollIntervalMS) * time.Millisecond
	if poll <= 0 {
		poll = core.DefaultPollIntervalMS * time.Millisecond
	}
	if cpInterval <= 0 {
		cpInterval = core.DefaultCheckpointIntervalMS * time.Millisecond
	}

	s := &FileSource{
		path:         abs,
		key:          abs,
		desc:         cfg.ShortDescription(),
		tail:         cfg.IsTail(),
		checksum:     cfg.IsChecksum(),
		pollInterval: poll,
		logger:       logger,
		store:        store,
		cpInterval:   cpInterval,
		now:          time.Now,
		startTime:    time.Now(),
	}
	s.lastEntryTime.Store(time.Time{})
	return s, nil
}

// IsReady is true once the file exists and can be opened for reading
func (s *FileSource) IsReady() bool {
	f, err := os.Open(s.path)
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	return err == nil && !info.IsDir()
}

func (s *FileSource) ShortDescription() string {
	return s.desc
}

// Start reads complete lines until ctx is cancelled. Partial trailing lines are held
// back until their newline arrives. Lines longer than core.MaxLineLength are emitted in
// chunks of that size. Truncation and replacement restart at offset 0.
func (s *FileSource) Start(ctx context.Context, emit input.Emitter) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", core.ErrIO, s.path, err)
	}
	defer func() { f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", core.ErrIO, s.path, err)
	}
	s.size.Store(info.Size())

	offset, lineNumber := s.startPosition(f, info)
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek %s: %v", core.ErrIO, s.path, err)
	}
	headSize := s.trackIdentity(f, info, offset)

	s.logger.Info("msg", "File source started",
		"component", "file_source",
		"path", s.path,
		"offset", offset,
		"line", lineNumber)

	reader := bufio.NewReaderSize(f, readBufferSize)
	var pending []byte

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		chunk, err := reader.ReadSlice('\n')
		pending = append(pending, chunk...)

		var raw []byte
		switch {
		case err == nil:
			raw, pending = pending, nil
		case errors.Is(err, bufio.ErrBufferFull):
			if len(pending) < core.MaxLineLength {
				continue
			}
			raw = pending[:core.MaxLineLength]
			pending = append([]byte(nil), pending[core.MaxLineLength:]...)
		case !errors.Is(err, io.EOF):
			return fmt.Errorf("%w: read %s: %v", core.ErrIO, s.path, err)
		}

		if raw != nil {
			offset += int64(len(raw))
			lineNumber++
			if s.checksum && headSize < core.ChecksumBytes && headSize < offset {
				headSize = s.refreshChecksum(f, offset)
			}

			line := string(bytes.TrimRight(raw, "\r\n"))
			if line == "" {
				continue
			}
			s.totalLines.Add(1)
			s.lastEntryTime.Store(s.now())
			emit.Emit(line, core.InputMarker{
				Path:       s.path,
				LineNumber: lineNumber,
				Offset:     offset,
			})
			continue
		}

		// At EOF: wait for more data, then look for truncation or replacement
		timer := time.NewTimer(s.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		reopen, reason, err := s.checkRotation(f, offset+int64(len(pending)))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				// Moved away and not recreated yet; keep reading the old handle
				continue
			}
			return fmt.Errorf("%w: stat %s: %v", core.ErrIO, s.path, err)
		}
		if !reopen {
			continue
		}

		s.rotations.Add(1)
		s.logger.Info("msg", "Log rotation detected",
			"component", "file_source",
			"path", s.path,
			"reason", reason,
			"offset", offset)

		nf, err := os.Open(s.path)
		if err != nil {
			return fmt.Errorf("%w: reopen %s: %v", core.ErrIO, s.path, err)
		}
		ninfo, err := nf.Stat()
		if err != nil {
			nf.Close()
			return fmt.Errorf("%w: stat %s: %v", core.ErrIO, s.path, err)
		}
		f.Close()
		f = nf
		reader.Reset(f)
		pending = nil
		offset, lineNumber = 0, 0
		headSize = s.trackIdentity(f, ninfo, 0)
	}
}

// startPosition resumes from a checkpoint taken on this same file. A checkpoint from a
// replaced or truncated file restarts at 0 so the new file is read whole; without a
// checkpoint the tail setting decides.
func (s *FileSource) startPosition(f *os.File, info os.FileInfo) (offset, line int64) {
	size := info.Size()
	if s.store != nil {
		cp, found, err := s.store.Load(s.key)
		switch {
		case err != nil:
			s.logger.Warn("msg", "Failed to load checkpoint, ignoring it",
				"component", "file_source",
				"path", s.path,
				"error", err)
		case !found:
		case cp.Offset > size:
			s.logger.Warn("msg", "Checkpoint beyond end of file, file was truncated; reading from start",
				"component", "file_source",
				"path", s.path,
				"checkpoint_offset", cp.Offset,
				"size", size)
			return 0, 0
		default:
			if reason := s.identityMismatch(f, info, cp); reason != "" {
				s.logger.Warn("msg", "Checkpoint belongs to a different file; reading from start",
					"component", "file_source",
					"path", s.path,
					"reason", reason,
					"checkpoint_offset", cp.Offset)
				return 0, 0
			}
			s.mu.Lock()
			s.last = core.InputMarker{Path: s.path, LineNumber: cp.LineNumber, Offset: cp.Offset}
			s.hasMarker = true
			s.mu.Unlock()
			return cp.Offset, cp.LineNumber
		}
	}
	if s.tail {
		return size, 0
	}
	return 0, 0
}

// identityMismatch returns why cp was not taken on the open file, or "" when it was
func (s *FileSource) identityMismatch(f *os.File, info os.FileInfo, cp checkpoint.Checkpoint) string {
	if cp.FileKey != "" {
		if key := fileKey(info); key != "" && key != cp.FileKey {
			return "file key changed"
		}
	}
	if s.checksum && cp.ChecksumSize > 0 {
		sum, n, err := headChecksum(f, cp.ChecksumSize)
		if err != nil {
			return "head unreadable: " + err.Error()
		}
		if n != cp.ChecksumSize || sum != cp.Checksum {
			return "head checksum changed"
		}
	}
	return ""
}

// trackIdentity records the identity of the file now being read and returns how many
// head bytes the checksum covers
func (s *FileSource) trackIdentity(f *os.File, info os.FileInfo, offset int64) int64 {
	s.mu.Lock()
	s.ident = fileIdentity{key: fileKey(info)}
	s.mu.Unlock()
	if !s.checksum {
		return 0
	}
	return s.refreshChecksum(f, offset)
}

// refreshChecksum hashes the head of f up to offset, capped at core.ChecksumBytes. Only
// bytes already read are covered, so the checksum never depends on unread data.
func (s *FileSource) refreshChecksum(f *os.File, offset int64) int64 {
	n := min(offset, int64(core.ChecksumBytes))
	sum, read, err := headChecksum(f, n)
	if err != nil {
		s.logger.Warn("msg", "Failed to checksum file head",
			"component", "file_source",
			"path", s.path,
			"error", err)
		return n
	}

	s.mu.Lock()
	s.ident.checksum, s.ident.size = sum, read
	s.mu.Unlock()
	return read
}

// headChecksum hashes up to n leading bytes of f without moving its read offset
func headChecksum(f *os.File, n int64) (string, int64, error) {
	if n <= 0 {
		return "", 0, nil
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(io.NewSectionReader(f, 0, n), buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", 0, err
	}
	return strconv.FormatUint(xxhash.Sum64(buf[:read]), 16), int64(read), nil
}

// checkRotation reports whether the path now names a different or truncated file
func (s *FileSource) checkRotation(f *os.File, position int64) (bool, string, error) {
	current, err := os.Stat(s.path)
	if err != nil {
		return false, "", err
	}
	s.size.Store(current.Size())

	open, err := f.Stat()
	if err != nil {
		return false, "", err
	}
	if !os.SameFile(open, current) {
		// Unread data left in the old file is drained before switching
		if open.Size() > position {
			return false, "", nil
		}
		return true, "file replaced", nil
	}
	if current.Size() < position {
		return true, "size decrease", nil
	}
	return false, "", nil
}

// CheckIn records progress and persists it at most once per checkpoint interval
func (s *FileSource) CheckIn(marker core.InputMarker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = marker
	s.hasMarker = true

	if now := s.now(); now.Sub(s.lastSaved) >= s.cpInterval {
		s.saveLocked(now)
	}
}

// LastCheckIn persists the latest marker regardless of the interval
func (s *FileSource) LastCheckIn() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasMarker {
		return
	}
	s.saveLocked(s.now())
	s.logger.Debug("msg", "Final checkpoint written",
		"component", "file_source",
		"path", s.path,
		"offset", s.last.Offset,
		"line", s.last.LineNumber)
}

func (s *FileSource) saveLocked(now time.Time) {
	if s.store == nil {
		return
	}
	cp := checkpoint.Checkpoint{
		Path:       s.path,
		Offset:     s.last.Offset,
		LineNumber: s.last.LineNumber,
		Size:       s.size.Load(),
		UpdatedAt:  now,

		FileKey:      s.ident.key,
		Checksum:     s.ident.checksum,
		ChecksumSize: s.ident.size,
	}
	if err := s.store.Save(s.key, cp); err != nil {
		s.logger.Warn("msg", "Failed to save checkpoint",
			"component", "file_source",
			"path", s.path,
			"error", err)
		return
	}
	s.lastSaved = now
}

func (s *FileSource) GetStats() Stats {
	s.mu.Lock()
	last, ident := s.last, s.ident
	s.mu.Unlock()

	return Stats{
		Type:          config.InputTypeFile,
		TotalLines:    s.totalLines.Load(),
		StartTime:     s.startTime,
		LastEntryTime: loadTime(&s.lastEntryTime),
		Details: map[string]any{
			"path":       s.path,
			"size":       s.size.Load(),
			"offset":     last.Offset,
			"line":       last.LineNumber,
			"rotations":  s.rotations.Load(),
			"checkpoint": s.store != nil,
			"file_key":   ident.key,
		},
	}
}
