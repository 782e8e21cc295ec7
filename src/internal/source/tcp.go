// FILE: logfeeder/src/internal/source/tcp.go
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/core"
	"logfeeder/src/internal/input"
	"logfeeder/src/internal/limit"

	"github.com/lixenwraith/log"
	"github.com/lixenwraith/log/compat"
	"github.com/panjf2000/gnet/v2"
)

const maxClientBufferSize = 10 * 1024 * 1024 // 10MB max per client

var errLineTooLong = errors.New("line too long without newline")

// TCPSource accepts newline-delimited records over TCP. gnet event loops split
// traffic into lines and hand them to Start over a channel, so emission stays on
// the input's execution context.
type TCPSource struct {
	host       string
	port       int64
	bufferSize int64
	desc       string
	ipChecker  *limit.IPChecker
	logger     *log.Logger

	engine   *gnet.Engine
	engineMu sync.Mutex

	// Statistics
	totalLines     atomic.Uint64
	invalidEntries atomic.Uint64
	activeConns    atomic.Int64
	lastLine       atomic.Int64
	startTime      time.Time
	lastEntryTime  atomic.Value // time.Time
}

// tcpLine is one complete record read from a connection
type tcpLine struct {
	text   string
	remote string
}

func NewTCPSource(cfg config.InputConfig, logger *log.Logger) (*TCPSource, error) {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, core.ConfigError(cfg.ShortDescription(), fmt.Errorf("tcp input requires valid 'port'"))
	}
	host := cfg.Host
	if host == "" {
		host = core.DefaultTCPHost
	}

	ipChecker, err := limit.NewIPChecker(cfg.IPAllow, cfg.IPDeny, logger)
	if err != nil {
		return nil, core.ConfigError(cfg.ShortDescription(), err)
	}

	t := &TCPSource{
		host:       host,
		port:       cfg.Port,
		bufferSize: core.DefaultTCPBufferSize,
		desc:       cfg.ShortDescription(),
		ipChecker:  ipChecker,
		startTime:  time.Now(),
		logger:     logger,
	}
	t.lastEntryTime.Store(time.Time{})
	return t, nil
}

// IsReady is always true, binding failures surface from Start
func (t *TCPSource) IsReady() bool {
	return true
}

func (t *TCPSource) ShortDescription() string {
	return t.desc
}

// Start runs the listener and emits received lines until ctx is cancelled
func (t *TCPSource) Start(ctx context.Context, emit input.Emitter) error {
	lines := make(chan tcpLine, t.bufferSize)
	done := make(chan struct{})
	booted := make(chan struct{})

	server := &tcpSourceServer{
		source:  t,
		lines:   lines,
		done:    done,
		booted:  booted,
		clients: make(map[gnet.Conn]*tcpClient),
	}

	addr := fmt.Sprintf("tcp://%s:%d", t.host, t.port)

	// Create a gnet adapter using the existing logger instance
	gnetLogger := compat.NewGnetAdapter(t.logger)

	errChan := make(chan error, 1)
	go func() {
		t.logger.Info("msg", "TCP source server starting",
			"component", "tcp_source",
			"port", t.port)

		errChan <- gnet.Run(server, addr,
			gnet.WithLogger(gnetLogger),
			gnet.WithMulticore(true),
			gnet.WithReusePort(true),
		)
	}()

	// Unblocks event loops waiting on a full line channel
	release := sync.OnceFunc(func() { close(done) })
	defer release()

	var lineNumber int64
	for {
		select {
		case <-ctx.Done():
			release()
			t.shutdown(booted, errChan)
			return ctx.Err()

		case err := <-errChan:
			if err == nil {
				return fmt.Errorf("%w: tcp listener on port %d stopped unexpectedly", core.ErrIO, t.port)
			}
			return fmt.Errorf("%w: tcp listener on port %d: %v", core.ErrIO, t.port, err)

		case l := <-lines:
			lineNumber++
			t.totalLines.Add(1)
			t.lastEntryTime.Store(time.Now())
			emit.Emit(l.text, core.InputMarker{Path: l.remote, LineNumber: lineNumber})
		}
	}
}

// shutdown stops the gnet engine and waits for Run to return
func (t *TCPSource) shutdown(booted <-chan struct{}, errChan <-chan error) {
	select {
	case <-booted:
	case err := <-errChan:
		if err != nil {
			t.logger.Warn("msg", "TCP source server exited before boot",
				"component", "tcp_source",
				"port", t.port,
				"error", err)
		}
		return
	case <-time.After(2 * time.Second):
		t.logger.Error("msg", "TCP source server did not boot, leaving it behind",
			"component", "tcp_source",
			"port", t.port)
		return
	}

	t.engineMu.Lock()
	engine := t.engine
	t.engine = nil
	t.engineMu.Unlock()

	if engine != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := engine.Stop(ctx); err != nil {
			t.logger.Warn("msg", "Failed to stop TCP engine",
				"component", "tcp_source",
				"port", t.port,
				"error", err)
		}
	}

	select {
	case <-errChan:
	case <-time.After(2 * time.Second):
		t.logger.Warn("msg", "TCP source server did not stop in time",
			"component", "tcp_source",
			"port", t.port)
	}
	t.logger.Info("msg", "TCP source stopped",
		"component", "tcp_source",
		"port", t.port)
}

// CheckIn tracks the last processed line; network input has no durable offset
func (t *TCPSource) CheckIn(marker core.InputMarker) {
	t.lastLine.Store(marker.LineNumber)
}

func (t *TCPSource) LastCheckIn() {
	t.logger.Debug("msg", "TCP source finished",
		"component", "tcp_source",
		"port", t.port,
		"last_line", t.lastLine.Load())
}

func (t *TCPSource) GetStats() Stats {
	return Stats{
		Type:          config.InputTypeTCP,
		TotalLines:    t.totalLines.Load(),
		StartTime:     t.startTime,
		LastEntryTime: loadTime(&t.lastEntryTime),
		Details: map[string]any{
			"host":               t.host,
			"port":               t.port,
			"active_connections": t.activeConns.Load(),
			"invalid_entries":    t.invalidEntries.Load(),
			"ip_access":          t.ipChecker.GetStats(),
		},
	}
}

// lineSplitter accumulates connection bytes and yields complete lines
type lineSplitter struct {
	buffer        bytes.Buffer
	maxBufferSeen int
}

// feed appends data and returns every complete non-empty line
func (l *lineSplitter) feed(data []byte) ([]string, error) {
	if l.buffer.Len()+len(data) > maxClientBufferSize {
		return nil, fmt.Errorf("client buffer limit %d exceeded", maxClientBufferSize)
	}
	l.buffer.Write(data)
	if l.buffer.Len() > l.maxBufferSeen {
		l.maxBufferSeen = l.buffer.Len()
	}

	var lines []string
	for {
		idx := bytes.IndexByte(l.buffer.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := bytes.TrimRight(l.buffer.Next(idx+1), "\r\n")
		if len(line) > 0 {
			lines = append(lines, string(line))
		}
	}

	if l.buffer.Len() > core.MaxLineLength {
		return lines, errLineTooLong
	}
	return lines, nil
}

// tcpClient is the per-connection read state
type tcpClient struct {
	remote   string
	splitter lineSplitter
}

// Handles gnet events
type tcpSourceServer struct {
	gnet.BuiltinEventEngine
	source  *TCPSource
	lines   chan<- tcpLine
	done    <-chan struct{}
	booted  chan struct{}
	clients map[gnet.Conn]*tcpClient
	mu      sync.RWMutex
}

func (s *tcpSourceServer) OnBoot(eng gnet.Engine) gnet.Action {
	// Store engine reference for shutdown
	s.source.engineMu.Lock()
	s.source.engine = &eng
	s.source.engineMu.Unlock()
	close(s.booted)

	s.source.logger.Debug("msg", "TCP source server booted",
		"component", "tcp_source",
		"port", s.source.port)
	return gnet.None
}

func (s *tcpSourceServer) OnOpen(c gnet.Conn) (out []byte, action gnet.Action) {
	remoteAddr := c.RemoteAddr().String()

	if !s.source.ipChecker.IsAllowed(c.RemoteAddr()) {
		s.source.logger.Warn("msg", "TCP connection rejected by access rules",
			"component", "tcp_source",
			"remote_addr", remoteAddr)
		return nil, gnet.Close
	}

	s.mu.Lock()
	s.clients[c] = &tcpClient{remote: remoteAddr}
	s.mu.Unlock()

	newCount := s.source.activeConns.Add(1)
	s.source.logger.Debug("msg", "TCP connection opened",
		"component", "tcp_source",
		"remote_addr", remoteAddr,
		"active_connections", newCount)
	return nil, gnet.None
}

func (s *tcpSourceServer) OnClose(c gnet.Conn, err error) gnet.Action {
	s.mu.Lock()
	client, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()

	// Rejected connections were never tracked
	if ok {
		newCount := s.source.activeConns.Add(-1)
		s.source.logger.Debug("msg", "TCP connection closed",
			"component", "tcp_source",
			"remote_addr", client.remote,
			"active_connections", newCount,
			"max_buffer", client.splitter.maxBufferSeen,
			"error", err)
	}
	return gnet.None
}

// OnTraffic blocks the event loop while the line channel is full, which pushes
// back on senders instead of dropping records
func (s *tcpSourceServer) OnTraffic(c gnet.Conn) gnet.Action {
	s.mu.RLock()
	client, exists := s.clients[c]
	s.mu.RUnlock()

	if !exists {
		return gnet.Close
	}

	data, err := c.Next(-1)
	if err != nil {
		s.source.logger.Error("msg", "Error reading from connection",
			"component", "tcp_source",
			"remote_addr", client.remote,
			"error", err)
		return gnet.Close
	}

	lines, err := client.splitter.feed(data)
	for _, line := range lines {
		select {
		case s.lines <- tcpLine{text: line, remote: client.remote}:
		case <-s.done:
			return gnet.Close
		}
	}
	if err != nil {
		s.source.invalidEntries.Add(1)
		s.source.logger.Warn("msg", "Closing TCP connection",
			"component", "tcp_source",
			"remote_addr", client.remote,
			"error", err)
		return gnet.Close
	}
	return gnet.None
}
