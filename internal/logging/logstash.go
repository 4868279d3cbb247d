package logging

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

// LogstashConfig tunes the TCP shipper. Zero values take the defaults.
type LogstashConfig struct {
	Addr         string
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	Backoff      time.Duration
}

// LogstashShipper forwards newline delimited JSON entries to a Logstash tcp
// input. Entries are dropped while the endpoint is down so logging never
// blocks a request.
type LogstashShipper struct {
	cfg  LogstashConfig
	dial func(addr string, timeout time.Duration) (net.Conn, error)
	now  func() time.Time

	mu        sync.Mutex
	conn      net.Conn
	downUntil time.Time
	closed    bool
	dropped   int
}

func NewLogstashShipper(cfg LogstashConfig) (*LogstashShipper, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	if cfg.Addr == "" {
		return nil, errors.New("logstash address is empty")
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 2 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = time.Second
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 5 * time.Second
	}
	return &LogstashShipper{
		cfg: cfg,
		dial: func(addr string, timeout time.Duration) (net.Conn, error) {
			return net.DialTimeout("tcp", addr, timeout)
		},
		now: time.Now,
	}, nil
}

// Write always reports the full length unless the shipper is closed.
func (s *LogstashShipper) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	line := append(make([]byte, 0, len(p)+1), p...)
	if line[len(line)-1] != '\n' {
		line = append(line, '\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, io.ErrClosedPipe
	}
	if !s.connect() {
		s.dropped++
		return len(p), nil
	}
	_ = s.conn.SetWriteDeadline(s.now().Add(s.cfg.WriteTimeout))
	if _, err := s.conn.Write(line); err != nil {
		s.disconnect()
		s.downUntil = s.now().Add(s.cfg.Backoff)
		s.dropped++
	}
	return len(p), nil
}

// Dropped counts entries discarded while Logstash was unreachable.
func (s *LogstashShipper) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *LogstashShipper) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.disconnect()
}

func (s *LogstashShipper) connect() bool {
	if s.conn != nil {
		return true
	}
	if s.now().Before(s.downUntil) {
		return false
	}
	conn, err := s.dial(s.cfg.Addr, s.cfg.DialTimeout)
	if err != nil {
		s.downUntil = s.now().Add(s.cfg.Backoff)
		return false
	}
	s.conn = conn
	s.downUntil = time.Time{}
	return true
}

func (s *LogstashShipper) disconnect() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
