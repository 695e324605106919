package services

import (
	"testing"
	"time"

	"github.com/Faarae/dashboard-SmartEcoBin/models"
)

func TestLiveSnapshotLive(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	window := 15 * time.Second

	tests := []struct {
		name string
		snap LiveSnapshot
		want bool
	}{
		{"fresh and connected", LiveSnapshot{Connected: true, LastUpdate: now.Add(-5 * time.Second)}, true},
		{"stale but connected", LiveSnapshot{Connected: true, LastUpdate: now.Add(-20 * time.Second)}, false},
		{"exactly at window", LiveSnapshot{Connected: true, LastUpdate: now.Add(-window)}, false},
		{"fresh but disconnected", LiveSnapshot{Connected: false, LastUpdate: now.Add(-time.Second)}, false},
		{"never updated", LiveSnapshot{Connected: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.Live(now, window); got != tt.want {
				t.Errorf("Live = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLiveStateMarkOfflineKeepsValues(t *testing.T) {
	s := NewLiveState()
	at := time.Now()
	s.Update(models.Reading{Gas: 640, Distance: 12}, at)

	if !s.MarkOffline() {
		t.Error("first MarkOffline should report the transition")
	}
	if s.MarkOffline() {
		t.Error("second MarkOffline should not report a transition")
	}

	snap := s.Snapshot()
	if snap.Connected {
		t.Error("still connected after MarkOffline")
	}
	if !snap.HasReading || snap.Reading.Gas != 640 || !snap.LastUpdate.Equal(at) {
		t.Errorf("last values lost: %+v", snap)
	}
}
