package extalife

import (
	log "github.com/sirupsen/logrus"
)

// SetupClimate creates a climate entity for every channel discovered for the
// climate platform and registers them with the core.
func SetupClimate(core *Core) []*Climate {
	channels := core.Channels(DomainClimate)
	log.Debugf("discovery: %+v", channels)

	climates := make([]*Climate, 0, len(channels))
	entities := make([]Entity, 0, len(channels))
	for _, ch := range channels {
		c := NewClimate(ch, core.Actions(), core, core)
		climates = append(climates, c)
		entities = append(entities, c)
	}
	core.AddEntities(entities...)

	core.PopChannels(DomainClimate)
	log.Infof("set up %d heat controllers", len(climates))
	return climates
}
