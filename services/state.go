package services

import (
	"sync"
	"time"

	"github.com/Faarae/dashboard-SmartEcoBin/models"
)

// LiveState holds the most recent reading. Values survive source failures;
// only the connected flag is cleared.
type LiveState struct {
	mu         sync.RWMutex
	reading    models.Reading
	hasReading bool
	connected  bool
	lastUpdate time.Time
}

type LiveSnapshot struct {
	Reading    models.Reading
	HasReading bool
	Connected  bool
	LastUpdate time.Time
}

func NewLiveState() *LiveState {
	return &LiveState{}
}

func (s *LiveState) Update(r models.Reading, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reading = r
	s.hasReading = true
	s.connected = true
	s.lastUpdate = at
}

// MarkOffline clears the connected flag and reports whether it was set.
func (s *LiveState) MarkOffline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.connected
	s.connected = false
	return was
}

func (s *LiveState) Snapshot() LiveSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return LiveSnapshot{
		Reading:    s.reading,
		HasReading: s.hasReading,
		Connected:  s.connected,
		LastUpdate: s.lastUpdate,
	}
}

// Live is true only while connected and the last update is younger than window.
func (s LiveSnapshot) Live(now time.Time, window time.Duration) bool {
	if !s.Connected || s.LastUpdate.IsZero() {
		return false
	}
	return now.Sub(s.LastUpdate) < window
}
