package services

import (
	"sync"
	"time"

	"github.com/Faarae/dashboard-SmartEcoBin/models"
)

// AlertGate raises an alert when the status changes into decomposing or full.
// Staying in the same status never re-alerts.
type AlertGate struct {
	mu   sync.Mutex
	last string
}

func NewAlertGate() *AlertGate {
	return &AlertGate{}
}

func (g *AlertGate) Observe(status models.Status, at time.Time) (models.Alert, bool) {
	g.mu.Lock()
	changed := status.Key != g.last
	g.last = status.Key
	g.mu.Unlock()

	if !changed {
		return models.Alert{}, false
	}

	var msg string
	switch status.Label {
	case models.LabelDecomposing:
		msg = "Decomposing waste detected!"
	case models.LabelFull:
		msg = "Bin is full!"
	default:
		return models.Alert{}, false
	}
	return models.Alert{Time: at, Status: status.Key, Icon: status.Icon, Message: msg}, true
}
