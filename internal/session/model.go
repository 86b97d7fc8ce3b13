package session

import "sync"

// Model is the Session View Model. Only this package mutates it; the
// rendering layer reads snapshots or subscribes to them.
type Model struct {
	mu   sync.RWMutex
	snap Snapshot
	subs map[int]*subscription
	next int

	display *Display
}

// subscription delivers snapshots to one subscriber in Version order.
type subscription struct {
	mu   sync.Mutex
	last uint64
	fn   func(Snapshot)
}

func (s *subscription) deliver(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Version <= s.last {
		return
	}
	s.last = snap.Version
	s.fn(snap)
}

func NewModel(mode DisplayMode) *Model {
	return &Model{subs: make(map[int]*subscription), display: NewDisplay(mode)}
}

// Snapshot returns the current consistent state.
func (m *Model) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// Display returns the cosmetic display preference.
func (m *Model) Display() *Display { return m.display }

// Subscribe registers fn, called after published changes with the new
// snapshot. Calls to one fn never overlap and see increasing versions; a
// snapshot overtaken by a newer one before delivery is skipped. fn must not
// call back into the Controller synchronously.
func (m *Model) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = &subscription{last: m.snap.Version, fn: fn}
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// update applies fn as one change and notifies subscribers.
func (m *Model) update(fn func(*Snapshot)) Snapshot {
	m.mu.Lock()
	fn(&m.snap)
	m.snap.Version++
	snap := m.snap
	subs := make([]*subscription, 0, len(m.subs))
	for _, s := range m.subs {
		subs = append(subs, s)
	}
	m.mu.Unlock()

	for _, s := range subs {
		s.deliver(snap)
	}
	return snap
}

// reset starts a fresh session for gameID.
func (m *Model) reset(gameID string) Snapshot {
	return m.update(func(s *Snapshot) {
		*s = Snapshot{GameID: gameID, Version: s.Version}
	})
}
