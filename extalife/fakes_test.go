package extalife

import (
	"context"
	"sync"
)

type sentAction struct {
	channelID string
	action    Action
	value     int
}

type fakeActions struct {
	accept bool
	sent   []sentAction
	mu     sync.Mutex
}

func (f *fakeActions) SendAction(_ context.Context, channelID string, action Action, value int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, sentAction{channelID, action, value})
	return f.accept
}

type fakeHost struct {
	refreshes int
	syncs     int
	mu        sync.Mutex
}

func (h *fakeHost) ScheduleRefresh(Entity) {
	h.mu.Lock()
	h.refreshes++
	h.mu.Unlock()
}

func (h *fakeHost) SyncData(Entity) {
	h.mu.Lock()
	h.syncs++
	h.mu.Unlock()
}

// signals counts every refresh the host was asked for, whichever kind.
func (h *fakeHost) signals() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refreshes + h.syncs
}

type fakeSensors struct {
	kinds    []string
	channels []Channel
}

func (s *fakeSensors) PushVirtualSensorChannels(kind string, channel Channel) {
	s.kinds = append(s.kinds, kind)
	s.channels = append(s.channels, channel)
}
