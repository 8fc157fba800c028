package dispatcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, l *Listener) (*Event, bool) {
	t.Helper()
	select {
	case e, ok := <-l.Receive():
		return e, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil, false
	}
}

func TestBroadcastReachesAllListeners(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d := New(ctx)

	a := d.NewListener()
	b := d.NewListener()
	defer a.Close()
	defer b.Close()

	d.Broadcast("12-1", "data")

	for _, l := range []*Listener{a, b} {
		e, ok := receive(t, l)
		require.True(t, ok)
		assert.Equal(t, &Event{Channel: "12-1", Data: "data"}, e)
	}
}

func TestCloseStopsDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d := New(ctx)

	l := d.NewListener()
	l.Close()

	_, ok := receive(t, l)
	assert.False(t, ok)
}

func TestSlowListenerIsDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d := New(ctx)

	l := d.NewListener()
	for i := 0; i < listenerBuffer+1; i++ {
		d.Broadcast("1", i)
	}
	// let the run loop hand out everything before reading
	time.Sleep(100 * time.Millisecond)

	count := 0
	for {
		_, ok := receive(t, l)
		if !ok {
			break
		}
		count++
	}
	assert.Equal(t, listenerBuffer, count)

	// closing a dropped listener is harmless
	l.Close()
}

func TestStopClosesListeners(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := New(ctx)
	l := d.NewListener()

	cancel()
	<-d.Done()

	_, ok := receive(t, l)
	assert.False(t, ok)

	// no-ops once stopped
	d.Broadcast("1", nil)
	late := d.NewListener()
	_, ok = receive(t, late)
	assert.False(t, ok)
	late.Close()
}
