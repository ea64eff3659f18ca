package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionAlertStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"open to acknowledged", AlertStatusOpen, AlertStatusAcknowledged, true},
		{"open to in_progress", AlertStatusOpen, AlertStatusInProgress, true},
		{"open force resolved", AlertStatusOpen, AlertStatusResolved, true},
		{"open force closed", AlertStatusOpen, AlertStatusClosed, true},
		{"acknowledged to in_progress", AlertStatusAcknowledged, AlertStatusInProgress, true},
		{"acknowledged to resolved", AlertStatusAcknowledged, AlertStatusResolved, true},
		{"in_progress to resolved", AlertStatusInProgress, AlertStatusResolved, true},
		{"resolved to closed", AlertStatusResolved, AlertStatusClosed, true},

		{"acknowledged back to open", AlertStatusAcknowledged, AlertStatusOpen, false},
		{"resolved back to open", AlertStatusResolved, AlertStatusOpen, false},
		{"resolved back to in_progress", AlertStatusResolved, AlertStatusInProgress, false},
		{"closed is terminal", AlertStatusClosed, AlertStatusResolved, false},
		{"open to open", AlertStatusOpen, AlertStatusOpen, false},
		{"unknown status", "bogus", AlertStatusOpen, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransitionAlertStatus(tt.from, tt.to))
		})
	}
}

func TestValidAlertStatus(t *testing.T) {
	for _, status := range []string{
		AlertStatusOpen, AlertStatusAcknowledged, AlertStatusInProgress,
		AlertStatusResolved, AlertStatusClosed,
	} {
		assert.True(t, ValidAlertStatus(status), status)
	}
	assert.False(t, ValidAlertStatus("pending"))
	assert.False(t, ValidAlertStatus(""))
}

func TestIsTerminalAlertStatus(t *testing.T) {
	assert.True(t, IsTerminalAlertStatus(AlertStatusResolved))
	assert.True(t, IsTerminalAlertStatus(AlertStatusClosed))
	assert.False(t, IsTerminalAlertStatus(AlertStatusOpen))
	assert.False(t, IsTerminalAlertStatus(AlertStatusAcknowledged))
	assert.False(t, IsTerminalAlertStatus(AlertStatusInProgress))
}

func TestFreshAlertStatuses(t *testing.T) {
	// 去重窗口只看 open/acknowledged：resolved/closed 的告警不阻止新告警
	assert.Equal(t, []string{AlertStatusOpen, AlertStatusAcknowledged}, FreshAlertStatuses())
	assert.True(t, IsFreshAlertStatus(AlertStatusOpen))
	assert.True(t, IsFreshAlertStatus(AlertStatusAcknowledged))
	assert.False(t, IsFreshAlertStatus(AlertStatusResolved))
	assert.False(t, IsFreshAlertStatus(AlertStatusInProgress))
}

func TestDefaultThresholdTable(t *testing.T) {
	table := DefaultThresholdTable()

	for sensorType, bounds := range table {
		// critical 边界严格在 low/high 边界之外
		assert.Less(t, bounds.CriticalLow, bounds.Low, sensorType)
		assert.Less(t, bounds.Low, bounds.High, sensorType)
		assert.Less(t, bounds.High, bounds.CriticalHigh, sensorType)
	}
}
