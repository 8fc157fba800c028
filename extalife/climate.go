package extalife

import (
	"context"

	log "github.com/sirupsen/logrus"
)

const (
	DomainClimate              = "climate"
	DomainVirtualClimateSensor = "virtual_climate_sensor"

	FeatureTargetTemperature = 1

	TemperatureUnitCelsius = "°C"
)

// Climate is an Exta Life heat controller channel exposed as a thermostat.
type Climate struct {
	channelID string
	alias     string
	store     *StateStore
	actions   ActionDispatcher
	host      EntityHost
	log       *log.Entry
}

type ClimateView struct {
	ID                    string         `json:"id"`
	Alias                 string         `json:"alias,omitempty"`
	HVACMode              HVACMode       `json:"hvacMode"`
	HVACModes             []HVACMode     `json:"hvacModes"`
	HVACAction            *HVACAction    `json:"hvacAction"`
	CurrentTemperature    *float64       `json:"currentTemperature"`
	TargetTemperature     *float64       `json:"targetTemperature"`
	MinTemp               float64        `json:"minTemp"`
	MaxTemp               float64        `json:"maxTemp"`
	TargetTemperatureStep float64        `json:"targetTemperatureStep"`
	Precision             float64        `json:"precision"`
	TemperatureUnit       string         `json:"temperatureUnit"`
	SupportedFeatures     int            `json:"supportedFeatures"`
	Attributes            map[string]any `json:"attributes"`
}

func NewClimate(channel Channel, actions ActionDispatcher, sensors VirtualSensorRegistrar, host EntityHost) *Climate {
	c := &Climate{
		channelID: channel.ID,
		alias:     channel.Alias,
		store:     NewStateStore(channel.Data),
		actions:   actions,
		host:      host,
		log:       log.WithFields(log.Fields{"channel": channel.ID, "platform": DomainClimate}),
	}

	if sensors != nil {
		sensors.PushVirtualSensorChannels(DomainVirtualClimateSensor, channel)
	}
	return c
}

func (c *Climate) ChannelID() string { return c.channelID }

func (c *Climate) Alias() string { return c.alias }

func (c *Climate) DeviceState() DeviceState { return c.store.Read() }

func (c *Climate) SupportedFeatures() int { return FeatureTargetTemperature }

func (c *Climate) MinTemp() float64 { return 5 }

func (c *Climate) MaxTemp() float64 { return 50 }

func (c *Climate) TargetTemperatureStep() float64 { return 0.5 }

func (c *Climate) Precision() float64 { return 0.5 }

func (c *Climate) TemperatureUnit() string { return TemperatureUnitCelsius }

func (c *Climate) HVACModes() []HVACMode {
	return []HVACMode{HVACModeAuto, HVACModeHeat}
}

func (c *Climate) HVACMode() HVACMode {
	return workModeToHVACMode(c.store.Read().WorkMode)
}

// HVACAction has no data source: the "power" field does not reflect whether
// the controller is actually heating.
func (c *Climate) HVACAction() (HVACAction, bool) {
	return "", false
}

func (c *Climate) CurrentTemperature() (float64, bool) {
	t, ok := c.store.Read().Temperature.Get()
	if !ok {
		return 0, false
	}
	return tenthsToDegrees(t), true
}

func (c *Climate) TargetTemperature() (float64, bool) {
	v, ok := c.store.Read().Value.Get()
	if !ok {
		return 0, false
	}
	return tenthsToDegrees(v), true
}

func (c *Climate) ExtraStateAttributes() map[string]any {
	data := c.store.Read()
	return map[string]any{
		"waiting_to_synchronize": data.WaitingToSynchronize.Ptr(),
		"temperature_old":        data.TemperatureOld.Ptr(),
	}
}

func (c *Climate) View() any {
	data := c.store.Read()

	view := ClimateView{
		ID:                    c.channelID,
		Alias:                 c.alias,
		HVACMode:              workModeToHVACMode(data.WorkMode),
		HVACModes:             c.HVACModes(),
		MinTemp:               c.MinTemp(),
		MaxTemp:               c.MaxTemp(),
		TargetTemperatureStep: c.TargetTemperatureStep(),
		Precision:             c.Precision(),
		TemperatureUnit:       c.TemperatureUnit(),
		SupportedFeatures:     c.SupportedFeatures(),
		Attributes:            c.ExtraStateAttributes(),
	}
	if action, ok := c.HVACAction(); ok {
		view.HVACAction = &action
	}
	if t, ok := data.Temperature.Get(); ok {
		current := tenthsToDegrees(t)
		view.CurrentTemperature = &current
	}
	if v, ok := data.Value.Get(); ok {
		target := tenthsToDegrees(v)
		view.TargetTemperature = &target
	}
	return view
}

// SetHVACMode switches between auto and manual (heat) mode. The controller
// requires a value with every action, so the current target is echoed back.
// Reports whether the gateway accepted the change.
func (c *Climate) SetHVACMode(ctx context.Context, mode HVACMode) bool {
	action := hvacModeToAction(mode)
	workMode, ok := hvacModeToWorkMode(mode)
	if action == ActionNone || !ok {
		c.log.Debugf("ignoring unsupported hvac mode %q", mode)
		return false
	}

	// An absent target is sent as 0.
	value, _ := c.store.Read().Value.Get()

	if !c.actions.SendAction(ctx, c.channelID, action, value) {
		c.log.Warnf("gateway rejected %s", action)
		return false
	}

	c.store.Apply(StatePatch{WorkMode: &workMode})
	c.log.Infof("hvac mode set to %s", mode)
	c.host.ScheduleRefresh(c)
	return true
}

// SetTemperature sets a new target temperature in degrees Celsius. A nil
// temperature is ignored. Setting a temperature always leaves auto mode.
func (c *Climate) SetTemperature(ctx context.Context, temperature *float64) bool {
	if temperature == nil {
		return false
	}
	tenths := degreesToTenths(*temperature)

	if !c.actions.SendAction(ctx, c.channelID, ActionSetTemperature, tenths) {
		c.log.Warnf("gateway rejected %s", ActionSetTemperature)
		return false
	}

	workMode, _ := hvacModeToWorkMode(HVACModeHeat)
	value := Some(tenths)
	c.store.Apply(StatePatch{WorkMode: &workMode, Value: &value})
	c.log.Infof("target temperature set to %.1f", tenthsToDegrees(tenths))
	c.host.ScheduleRefresh(c)
	return true
}

// OnStateNotification reacts to a status push from the controller. The state
// is only committed, and observers only refreshed, when it actually changed.
func (c *Climate) OnStateNotification(n StateNotification) bool {
	workMode := false
	if state, ok := n.State.Get(); ok {
		if mode, ok := notificationStateToHVACMode(state); ok {
			workMode, _ = hvacModeToWorkMode(mode)
		}
	}

	_, changed := c.store.Update(func(current DeviceState) DeviceState {
		current.WorkMode = workMode
		current.Value = n.Value
		return current
	})
	if !changed {
		c.log.Debug("notification carries no new state")
		return false
	}

	c.host.SyncData(c)
	return true
}
