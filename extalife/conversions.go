package extalife

import "math"

// Exta Life controller logic:
// set temp: set state to 1. Controller returns state = 0, meaning work_mode is false.
// set auto: set state to 0. Controller returns state = 1, meaning work_mode is true.

type HVACMode string

const (
	HVACModeAuto HVACMode = "auto"
	HVACModeHeat HVACMode = "heat"
)

type HVACAction string

const (
	HVACActionHeating HVACAction = "heating"
	HVACActionIdle    HVACAction = "idle"
)

// Action is a gateway action code.
type Action uint8

const (
	ActionNone Action = iota
	ActionSetTemperature
	ActionSetModeManual
	ActionSetModeAuto
)

func (a Action) String() string {
	switch a {
	case ActionSetTemperature:
		return "SET_TMP"
	case ActionSetModeManual:
		return "SET_RGT_MODE_MANUAL"
	case ActionSetModeAuto:
		return "SET_RGT_MODE_AUTO"
	default:
		return "NONE"
	}
}

// GatewayState returns the "state" field the controller expects for an action.
func (a Action) GatewayState() (int, bool) {
	switch a {
	case ActionSetTemperature, ActionSetModeManual:
		return 1, true
	case ActionSetModeAuto:
		return 0, true
	default:
		return 0, false
	}
}

func ParseHVACMode(s string) (HVACMode, bool) {
	switch HVACMode(s) {
	case HVACModeAuto:
		return HVACModeAuto, true
	case HVACModeHeat:
		return HVACModeHeat, true
	default:
		return "", false
	}
}

// workModeToHVACMode maps the "work_mode" field.
func workModeToHVACMode(workMode bool) HVACMode {
	if workMode {
		return HVACModeAuto
	}
	return HVACModeHeat
}

func hvacModeToWorkMode(mode HVACMode) (bool, bool) {
	switch mode {
	case HVACModeAuto:
		return true, true
	case HVACModeHeat:
		return false, true
	default:
		return false, false
	}
}

// notificationStateToHVACMode maps the notification "state" field.
func notificationStateToHVACMode(state int) (HVACMode, bool) {
	switch state {
	case 1:
		return HVACModeAuto, true
	case 0:
		return HVACModeHeat, true
	default:
		return "", false
	}
}

// powerToHVACAction maps the "power" field. The controller does not report
// heating activity through it, so nothing reads it yet.
func powerToHVACAction(power int) (HVACAction, bool) {
	switch power {
	case 1:
		return HVACActionHeating, true
	case 0:
		return HVACActionIdle, true
	default:
		return "", false
	}
}

func hvacModeToAction(mode HVACMode) Action {
	switch mode {
	case HVACModeAuto:
		return ActionSetModeAuto
	case HVACModeHeat:
		return ActionSetModeManual
	default:
		return ActionNone
	}
}

func tenthsToDegrees(tenths int) float64 {
	return float64(tenths) / 10.0
}

func degreesToTenths(degrees float64) int {
	return int(math.Round(degrees * 10.0))
}
