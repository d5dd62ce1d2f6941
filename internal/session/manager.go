package session

import (
	"container/list"
	"sync"

	"github.com/google/uuid"
)

const DefaultCapacity = 256

type key struct {
	uid    string
	fileID uuid.UUID
}

type entry struct {
	once sync.Once
	sess *Session
	elem *list.Element
}

// Manager is the only owner of conversation sessions. Sessions are
// created lazily on first use; concurrent first calls for the same key
// share one construction, while distinct keys never contend beyond a
// short map lookup. Least-recently-used sessions are evicted once the
// configured capacity is exceeded; an evicted session loses its history,
// exactly as a process restart would.
type Manager struct {
	mu       sync.Mutex
	capacity int
	entries  map[key]*entry
	order    *list.List // front = most recently used, values are keys

	newRetriever func(uid string, fileID uuid.UUID) Retriever
	generator    Generator
}

func NewManager(capacity int, newRetriever func(uid string, fileID uuid.UUID) Retriever, generator Generator) *Manager {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Manager{
		capacity:     capacity,
		entries:      make(map[key]*entry),
		order:        list.New(),
		newRetriever: newRetriever,
		generator:    generator,
	}
}

// GetOrCreate returns the session for (uid, fileID), constructing it on
// first use. seed pre-populates the history and applies only at
// construction; an existing session keeps its own history.
func (m *Manager) GetOrCreate(uid string, fileID uuid.UUID, seed []Turn) *Session {
	k := key{uid: uid, fileID: fileID}

	m.mu.Lock()
	e, ok := m.entries[k]
	if !ok {
		e = &entry{}
		e.elem = m.order.PushFront(k)
		m.entries[k] = e
		m.evictLocked()
	} else {
		m.order.MoveToFront(e.elem)
	}
	m.mu.Unlock()

	// Construction happens outside the map lock; losers of a racing
	// first call block here and receive the winner's session.
	e.once.Do(func() {
		e.sess = &Session{
			retriever: m.newRetriever(uid, fileID),
			generator: m.generator,
			turns:     copyTurns(seed),
		}
	})

	return e.sess
}

// Remove drops the session for (uid, fileID), if any.
func (m *Manager) Remove(uid string, fileID uuid.UUID) {
	k := key{uid: uid, fileID: fileID}

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[k]; ok {
		m.order.Remove(e.elem)
		delete(m.entries, k)
	}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Manager) evictLocked() {
	for len(m.entries) > m.capacity {
		back := m.order.Back()
		if back == nil {
			return
		}
		m.order.Remove(back)
		delete(m.entries, back.Value.(key))
	}
}
