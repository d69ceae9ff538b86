// Package sessionlog keeps transient, append-only progress logs for
// reconciliation sessions so UIs can stream pipeline output.
package sessionlog

import (
	"sync"
	"time"
)

// DefaultTTL is how long a session's log lives after its last append.
const DefaultTTL = 120 * time.Second

// Line is a single timestamped log line. Seq increases monotonically
// within a session.
type Line struct {
	Seq  int       `json:"seq"`
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

// Store is an injectable session-log store. Implementations must be safe
// for concurrent use.
type Store interface {
	Append(sessionID, text string)
	// Read returns all lines with Seq > afterSeq, in order.
	Read(sessionID string, afterSeq int) []Line
	Clear(sessionID string)
}

type session struct {
	lines   []Line
	touched time.Time
}

// MemoryStore is a mutex-guarded in-process Store. Sessions expire after
// the TTL elapses since their last append; expiry is enforced lazily on
// each call.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*session
	now      func() time.Time
}

// NewMemory creates a MemoryStore. A non-positive ttl falls back to
// DefaultTTL.
func NewMemory(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

func (s *MemoryStore) Append(sessionID, text string) {
	if sessionID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expireLocked(now)

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{}
		s.sessions[sessionID] = sess
	}
	sess.lines = append(sess.lines, Line{Seq: len(sess.lines) + 1, At: now, Text: text})
	sess.touched = now
}

func (s *MemoryStore) Read(sessionID string, afterSeq int) []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked(s.now())

	sess, ok := s.sessions[sessionID]
	if !ok || afterSeq >= len(sess.lines) {
		return nil
	}
	if afterSeq < 0 {
		afterSeq = 0
	}
	out := make([]Line, len(sess.lines)-afterSeq)
	copy(out, sess.lines[afterSeq:])
	return out
}

func (s *MemoryStore) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *MemoryStore) expireLocked(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.touched) > s.ttl {
			delete(s.sessions, id)
		}
	}
}
