package services

import (
	"slices"
	"sync"

	"github.com/Faarae/dashboard-SmartEcoBin/models"
)

const DefaultTelemetryCapacity = 50

// TelemetryBuffer keeps the most recent samples, oldest first.
type TelemetryBuffer struct {
	mu       sync.RWMutex
	capacity int
	samples  []models.TelemetrySample
}

func NewTelemetryBuffer(capacity int) *TelemetryBuffer {
	if capacity <= 0 {
		capacity = DefaultTelemetryCapacity
	}
	return &TelemetryBuffer{
		capacity: capacity,
		samples:  make([]models.TelemetrySample, 0, capacity+1),
	}
}

func (b *TelemetryBuffer) Append(s models.TelemetrySample) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.samples = append(b.samples, s)
	if over := len(b.samples) - b.capacity; over > 0 {
		b.samples = slices.Delete(b.samples, 0, over)
	}
}

func (b *TelemetryBuffer) Snapshot() []models.TelemetrySample {
	return b.Last(0)
}

// Last returns a copy of the n most recent samples; n <= 0 means all.
func (b *TelemetryBuffer) Last(n int) []models.TelemetrySample {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start := 0
	if n > 0 && n < len(b.samples) {
		start = len(b.samples) - n
	}
	return slices.Clone(b.samples[start:])
}

func (b *TelemetryBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = b.samples[:0]
}

func (b *TelemetryBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.samples)
}

func (b *TelemetryBuffer) Capacity() int {
	return b.capacity
}
