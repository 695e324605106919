package services

import (
	"sync"
	"testing"

	"github.com/Faarae/dashboard-SmartEcoBin/models"
)

func TestTelemetryBufferEvictsOldest(t *testing.T) {
	b := NewTelemetryBuffer(50)
	for i := 1; i <= 60; i++ {
		b.Append(models.TelemetrySample{Gas: i})
	}

	if b.Len() != 50 {
		t.Fatalf("Len = %d, want 50", b.Len())
	}
	snap := b.Snapshot()
	for i, s := range snap {
		if want := i + 11; s.Gas != want {
			t.Fatalf("sample %d = #%d, want #%d", i, s.Gas, want)
		}
	}
}

func TestTelemetryBufferSnapshotIsCopy(t *testing.T) {
	b := NewTelemetryBuffer(3)
	b.Append(models.TelemetrySample{Gas: 1})
	snap := b.Snapshot()
	snap[0].Gas = 99
	if got := b.Snapshot()[0].Gas; got != 1 {
		t.Errorf("buffer modified through snapshot: %d", got)
	}
}

func TestTelemetryBufferLast(t *testing.T) {
	b := NewTelemetryBuffer(10)
	for i := 1; i <= 5; i++ {
		b.Append(models.TelemetrySample{Gas: i})
	}

	tests := []struct {
		n     int
		first int
		len   int
	}{
		{0, 1, 5},
		{2, 4, 2},
		{5, 1, 5},
		{50, 1, 5},
		{-1, 1, 5},
	}
	for _, tt := range tests {
		got := b.Last(tt.n)
		if len(got) != tt.len || got[0].Gas != tt.first {
			t.Errorf("Last(%d) = %d samples starting at #%d, want %d starting at #%d", tt.n, len(got), got[0].Gas, tt.len, tt.first)
		}
	}
}

func TestTelemetryBufferClear(t *testing.T) {
	b := NewTelemetryBuffer(0)
	if b.Capacity() != DefaultTelemetryCapacity {
		t.Errorf("default capacity = %d, want %d", b.Capacity(), DefaultTelemetryCapacity)
	}
	b.Append(models.TelemetrySample{Gas: 1})
	b.Clear()
	if b.Len() != 0 || len(b.Snapshot()) != 0 {
		t.Error("buffer not empty after Clear")
	}
}

func TestTelemetryBufferConcurrent(t *testing.T) {
	b := NewTelemetryBuffer(50)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				b.Append(models.TelemetrySample{Gas: i})
				_ = b.Snapshot()
			}
		}()
	}
	wg.Wait()
	if b.Len() != 50 {
		t.Errorf("Len = %d, want 50", b.Len())
	}
}
