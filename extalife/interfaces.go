package extalife

import "context"

// ActionDispatcher sends a control action for a channel to the gateway.
// It reports whether the gateway accepted the action; retries, if any, are
// its own business.
type ActionDispatcher interface {
	SendAction(ctx context.Context, channelID string, action Action, value int) bool
}

// VirtualSensorRegistrar queues a channel for an auxiliary sensor platform.
type VirtualSensorRegistrar interface {
	PushVirtualSensorChannels(kind string, channel Channel)
}

// Entity is a platform entity backed by one gateway channel.
type Entity interface {
	ChannelID() string
	DeviceState() DeviceState
	View() any
}

// EntityHost is the platform side of an entity.
type EntityHost interface {
	// ScheduleRefresh asks observers to re-read the entity.
	ScheduleRefresh(e Entity)
	// SyncData pushes the entity's state into the data layer, then schedules a refresh.
	SyncData(e Entity)
}
