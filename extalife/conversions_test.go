package extalife

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkModeRoundTrip(t *testing.T) {
	for _, b := range []bool{true, false} {
		wm, ok := hvacModeToWorkMode(workModeToHVACMode(b))
		assert.True(t, ok)
		assert.Equal(t, b, wm)
	}
}

func TestWorkModeToHVACMode(t *testing.T) {
	assert.Equal(t, HVACModeAuto, workModeToHVACMode(true))
	assert.Equal(t, HVACModeHeat, workModeToHVACMode(false))
}

func TestHVACModeToWorkModeRejectsUnknown(t *testing.T) {
	_, ok := hvacModeToWorkMode(HVACMode("cool"))
	assert.False(t, ok)
}

func TestNotificationStateToHVACMode(t *testing.T) {
	tests := []struct {
		state int
		mode  HVACMode
		ok    bool
	}{
		{0, HVACModeHeat, true},
		{1, HVACModeAuto, true},
		{2, "", false},
		{-1, "", false},
	}
	for _, tt := range tests {
		mode, ok := notificationStateToHVACMode(tt.state)
		assert.Equal(t, tt.ok, ok, "state %d", tt.state)
		assert.Equal(t, tt.mode, mode, "state %d", tt.state)
	}
}

func TestPowerToHVACAction(t *testing.T) {
	action, ok := powerToHVACAction(1)
	assert.True(t, ok)
	assert.Equal(t, HVACActionHeating, action)

	action, ok = powerToHVACAction(0)
	assert.True(t, ok)
	assert.Equal(t, HVACActionIdle, action)

	_, ok = powerToHVACAction(7)
	assert.False(t, ok)
}

func TestHVACModeToAction(t *testing.T) {
	assert.Equal(t, ActionSetModeAuto, hvacModeToAction(HVACModeAuto))
	assert.Equal(t, ActionSetModeManual, hvacModeToAction(HVACModeHeat))
	assert.Equal(t, ActionNone, hvacModeToAction(HVACMode("off")))
}

func TestActionGatewayState(t *testing.T) {
	state, ok := ActionSetTemperature.GatewayState()
	assert.True(t, ok)
	assert.Equal(t, 1, state)

	state, ok = ActionSetModeManual.GatewayState()
	assert.True(t, ok)
	assert.Equal(t, 1, state)

	state, ok = ActionSetModeAuto.GatewayState()
	assert.True(t, ok)
	assert.Equal(t, 0, state)

	_, ok = ActionNone.GatewayState()
	assert.False(t, ok)
}

func TestParseHVACMode(t *testing.T) {
	mode, ok := ParseHVACMode("auto")
	assert.True(t, ok)
	assert.Equal(t, HVACModeAuto, mode)

	_, ok = ParseHVACMode("cool")
	assert.False(t, ok)
}

func TestTemperatureRoundTripHalfDegrees(t *testing.T) {
	for tenths := -100; tenths <= 600; tenths += 5 {
		assert.Equal(t, tenths, degreesToTenths(tenthsToDegrees(tenths)))
	}
}

func TestDegreesToTenths(t *testing.T) {
	assert.Equal(t, 215, degreesToTenths(21.5))
	assert.Equal(t, 200, degreesToTenths(20))
	assert.Equal(t, 213, degreesToTenths(21.29999))
	assert.InDelta(t, 21.5, tenthsToDegrees(215), 1e-9)
}
