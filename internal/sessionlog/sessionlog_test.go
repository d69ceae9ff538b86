package sessionlog

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_AppendAndRead(t *testing.T) {
	s := NewMemory(0)
	s.Append("sess-1", "first")
	s.Append("sess-1", "second")

	lines := s.Read("sess-1", 0)
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[0].Seq)
	assert.Equal(t, "first", lines[0].Text)
	assert.Equal(t, 2, lines[1].Seq)
	assert.Equal(t, "second", lines[1].Text)
	assert.False(t, lines[0].At.IsZero())
}

func TestMemoryStore_ReadAfterSeq(t *testing.T) {
	s := NewMemory(0)
	s.Append("sess-1", "first")
	s.Append("sess-1", "second")
	s.Append("sess-1", "third")

	lines := s.Read("sess-1", 2)
	require.Len(t, lines, 1)
	assert.Equal(t, "third", lines[0].Text)

	assert.Empty(t, s.Read("sess-1", 3))
}

func TestMemoryStore_UnknownSession(t *testing.T) {
	s := NewMemory(0)
	assert.Empty(t, s.Read("missing", 0))
}

func TestMemoryStore_SessionsAreIndependent(t *testing.T) {
	s := NewMemory(0)
	s.Append("a", "for a")
	s.Append("b", "for b")

	require.Len(t, s.Read("a", 0), 1)
	assert.Equal(t, "for a", s.Read("a", 0)[0].Text)
	assert.Equal(t, "for b", s.Read("b", 0)[0].Text)
}

func TestMemoryStore_Clear(t *testing.T) {
	s := NewMemory(0)
	s.Append("sess-1", "line")
	s.Clear("sess-1")
	assert.Empty(t, s.Read("sess-1", 0))
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemory(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }
	s.Append("sess-1", "line")

	// Still readable just inside the TTL.
	s.now = func() time.Time { return now.Add(59 * time.Second) }
	assert.Len(t, s.Read("sess-1", 0), 1)

	// Gone once the TTL has elapsed since the last append.
	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	assert.Empty(t, s.Read("sess-1", 0))
}

func TestMemoryStore_AppendRefreshesTTL(t *testing.T) {
	s := NewMemory(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }
	s.Append("sess-1", "first")

	s.now = func() time.Time { return now.Add(45 * time.Second) }
	s.Append("sess-1", "second")

	s.now = func() time.Time { return now.Add(90 * time.Second) }
	assert.Len(t, s.Read("sess-1", 0), 2)
}

func TestMemoryStore_EmptySessionIDIgnored(t *testing.T) {
	s := NewMemory(0)
	s.Append("", "line")
	assert.Empty(t, s.Read("", 0))
}

func TestMemoryStore_ConcurrentAppends(t *testing.T) {
	s := NewMemory(0)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Append("sess-1", "line")
			}
		}()
	}
	wg.Wait()

	lines := s.Read("sess-1", 0)
	require.Len(t, lines, 1000)
	for i, line := range lines {
		assert.Equal(t, i+1, line.Seq)
	}
}
