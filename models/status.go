package models

type Label int

const (
	LabelNormal Label = iota
	LabelFull
	LabelDecomposing
	LabelAnomalous
)

// LabelNames is indexed by Label and matches the training dataset encoding.
var LabelNames = []string{"normal", "full", "decomposing", "anomalous"}

func (l Label) Valid() bool {
	return l >= LabelNormal && l <= LabelAnomalous
}

func (l Label) String() string {
	if !l.Valid() {
		return "unknown"
	}
	return LabelNames[l]
}

type Status struct {
	Label       Label  `json:"label"`
	Key         string `json:"key"`
	Title       string `json:"title"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Background  string `json:"background"`
}

var statuses = [...]Status{
	LabelNormal: {
		Label:       LabelNormal,
		Key:         "normal",
		Title:       "STATUS: NORMAL",
		Icon:        "🌱",
		Description: "Capacity available. Air is safe.",
		Background:  "linear-gradient(135deg, #2EC4B6, #218380)",
	},
	LabelFull: {
		Label:       LabelFull,
		Key:         "full",
		Title:       "STATUS: FULL",
		Icon:        "🗑️",
		Description: "Bin is full (dry waste). Collect now.",
		Background:  "linear-gradient(135deg, #FF9F1C, #E07A5F)",
	},
	LabelDecomposing: {
		Label:       LabelDecomposing,
		Key:         "decomposing",
		Title:       "DANGER: DECOMPOSING",
		Icon:        "☣️",
		Description: "Handle immediately! Active decomposition.",
		Background:  "linear-gradient(135deg, #D90429, #8D0801)",
	},
	LabelAnomalous: {
		Label:       LabelAnomalous,
		Key:         "anomalous",
		Title:       "ANOMALY DETECTED",
		Icon:        "⚡",
		Description: "The model detected an unusual jump in the readings.",
		Background:  "linear-gradient(135deg, #4b4b4b, #2e2e2e)",
	},
}

// StatusFor returns the display status for l. Unknown labels map to normal.
func StatusFor(l Label) Status {
	if !l.Valid() {
		return statuses[LabelNormal]
	}
	return statuses[l]
}
