package extalife

import (
	"context"
	"sort"
	"sync"

	"github.com/acd/extaclimate/internal/cache"
	"github.com/acd/extaclimate/internal/dispatcher"
	log "github.com/sirupsen/logrus"
)

// Core is the context of one configured Exta Life installation. It is built
// once per configuration entry and handed to everything that needs it.
type Core struct {
	EntryID string

	actions    ActionDispatcher
	data       *cache.Cache
	dispatcher *dispatcher.Dispatcher

	channels map[string][]Channel
	entities map[string]Entity
	mu       sync.RWMutex
}

func NewCore(ctx context.Context, entryID string, actions ActionDispatcher) *Core {
	return &Core{
		EntryID: entryID,
		actions: actions,
		data: cache.New(func(key string, data any) {
			log.WithField("channel", key).Debugf("data manager updated: %+v", data)
		}),
		dispatcher: dispatcher.New(ctx),
		channels:   make(map[string][]Channel),
		entities:   make(map[string]Entity),
	}
}

func (c *Core) Actions() ActionDispatcher {
	return c.actions
}

// PushChannels queues discovered channels for the platform of domain.
func (c *Core) PushChannels(domain string, channels ...Channel) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.channels[domain] = append(c.channels[domain], channels...)
	for _, ch := range channels {
		c.data.Update(ch.ID, ch.Data)
	}
}

func (c *Core) Channels(domain string) []Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]Channel(nil), c.channels[domain]...)
}

// PopChannels forgets the channels queued for domain once its platform
// has consumed them.
func (c *Core) PopChannels(domain string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.channels, domain)
}

func (c *Core) PushVirtualSensorChannels(kind string, channel Channel) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.channels[kind] = append(c.channels[kind], channel)
}

func (c *Core) AddEntities(entities ...Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range entities {
		c.entities[e.ChannelID()] = e
	}
}

func (c *Core) Entity(channelID string) (Entity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entities[channelID]
	return e, ok
}

// Entities returns all registered entities ordered by channel id.
func (c *Core) Entities() []Entity {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entity, 0, len(c.entities))
	for _, e := range c.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ChannelID() < out[j].ChannelID()
	})
	return out
}

// HandleNotification routes a controller status push to the entity that
// owns the channel.
func (c *Core) HandleNotification(channelID string, n StateNotification) {
	e, ok := c.Entity(channelID)
	if !ok {
		log.WithField("channel", channelID).Debug("notification for unknown channel")
		return
	}

	if r, ok := e.(interface{ OnStateNotification(StateNotification) bool }); ok {
		r.OnStateNotification(n)
	}
}

// DataState returns the data manager's copy of a channel state.
func (c *Core) DataState(channelID string) (DeviceState, bool) {
	v, ok := c.data.Get(channelID)
	if !ok {
		return DeviceState{}, false
	}
	s, ok := v.(DeviceState)
	return s, ok
}

func (c *Core) ScheduleRefresh(e Entity) {
	c.dispatcher.Broadcast(e.ChannelID(), e.View())
}

func (c *Core) SyncData(e Entity) {
	c.data.Update(e.ChannelID(), e.DeviceState())
	c.ScheduleRefresh(e)
}

func (c *Core) NewListener() *dispatcher.Listener {
	return c.dispatcher.NewListener()
}
