package models

import "time"

// Reading is one sample reported by the bin sensor.
type Reading struct {
	Gas          int       `json:"gas"`
	Distance     int       `json:"distance"`
	DeviceStatus string    `json:"device_status,omitempty"`
	ReceivedAt   time.Time `json:"received_at"`
}

type FeatureVector struct {
	Gas      int `json:"gas"`
	Distance int `json:"distance"`
	DeltaGas int `json:"delta_gas"`
}

// Values returns the vector in model column order: Gas, Jarak, Delta_Gas.
func (f FeatureVector) Values() []float64 {
	return []float64{float64(f.Gas), float64(f.Distance), float64(f.DeltaGas)}
}

type Thresholds struct {
	Gas      int `json:"gas"`
	Distance int `json:"distance"`
}
