package models

import "time"

type TelemetrySample struct {
	Time     time.Time `json:"time"`
	Gas      int       `json:"gas"`
	Distance int       `json:"distance"`
	Status   string    `json:"status"`
}

type Indicators struct {
	FillPercent int     `json:"fill_percent"`
	Capacity    string  `json:"capacity"`
	GasLevel    float64 `json:"gas_level"`
	Air         string  `json:"air"`
	DecayRisk   int     `json:"decay_risk"`
	DecayBand   string  `json:"decay_band"`
}

type Connectivity struct {
	Source             string    `json:"source"`
	Online             bool      `json:"online"`
	Connected          bool      `json:"connected"`
	LastUpdate         time.Time `json:"last_update"`
	SecondsSinceUpdate int       `json:"seconds_since_update"`
}

// View is everything the dashboard renders for one pass.
type View struct {
	Time         time.Time     `json:"time"`
	HasReading   bool          `json:"has_reading"`
	Reading      Reading       `json:"reading"`
	Features     FeatureVector `json:"features"`
	Status       Status        `json:"status"`
	Indicators   Indicators    `json:"indicators"`
	Thresholds   Thresholds    `json:"thresholds"`
	Connectivity Connectivity  `json:"connectivity"`
	ModelLoaded  bool          `json:"model_loaded"`
}

type Alert struct {
	Time    time.Time `json:"time"`
	Status  string    `json:"status"`
	Icon    string    `json:"icon"`
	Message string    `json:"message"`
}
