package services

import (
	"sync"

	"github.com/Faarae/dashboard-SmartEcoBin/models"
)

// FeatureExtractor derives model inputs from consecutive readings. The gas
// delta is measured against the previous reading, starting from zero.
type FeatureExtractor struct {
	mu      sync.Mutex
	prevGas int
}

func NewFeatureExtractor() *FeatureExtractor {
	return &FeatureExtractor{}
}

// Extract must be called once per new reading, in arrival order.
func (e *FeatureExtractor) Extract(r models.Reading) models.FeatureVector {
	e.mu.Lock()
	defer e.mu.Unlock()

	fv := models.FeatureVector{
		Gas:      r.Gas,
		Distance: r.Distance,
		DeltaGas: r.Gas - e.prevGas,
	}
	e.prevGas = r.Gas
	return fv
}
