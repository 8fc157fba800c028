package dispatcher

import "context"

const (
	broadcastBuffer = 64
	listenerBuffer  = 32
)

// Event tells listeners that the entity behind a channel has new state.
type Event struct {
	Channel string `json:"channel"`
	Data    any    `json:"data"`
}

type Listener struct {
	ch        chan *Event
	closeFunc func()
}

// Receive returns the event stream. It is closed when the listener is
// closed, falls too far behind, or the dispatcher stops.
func (l *Listener) Receive() <-chan *Event {
	return l.ch
}

func (l *Listener) Close() {
	l.closeFunc()
}

// Dispatcher fans events out to every registered listener. Listeners that
// cannot keep up are dropped rather than allowed to stall the others.
type Dispatcher struct {
	ctx          context.Context
	listeners    map[*Listener]struct{}
	broadcast    chan *Event
	registerCh   chan *Listener
	deregisterCh chan *Listener
	done         chan struct{}
}

func New(ctx context.Context) *Dispatcher {
	d := &Dispatcher{
		ctx:          ctx,
		broadcast:    make(chan *Event, broadcastBuffer),
		registerCh:   make(chan *Listener),
		deregisterCh: make(chan *Listener),
		listeners:    make(map[*Listener]struct{}),
		done:         make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) NewListener() *Listener {
	l := &Listener{
		ch: make(chan *Event, listenerBuffer),
	}
	l.closeFunc = func() {
		select {
		case d.deregisterCh <- l:
		case <-d.done:
		}
	}

	select {
	case d.registerCh <- l:
	case <-d.done:
		close(l.ch)
	}
	return l
}

// Broadcast queues an event for all listeners. It drops the event once the
// dispatcher has stopped.
func (d *Dispatcher) Broadcast(channel string, data any) {
	select {
	case d.broadcast <- &Event{Channel: channel, Data: data}:
	case <-d.done:
	}
}

// Done is closed after the dispatcher has stopped and closed all listeners.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for {
		select {
		case listener := <-d.registerCh:
			d.listeners[listener] = struct{}{}
		case listener := <-d.deregisterCh:
			d.drop(listener)
		case event := <-d.broadcast:
			for listener := range d.listeners {
				select {
				case listener.ch <- event:
				default:
					d.drop(listener)
				}
			}
		case <-d.ctx.Done():
			for listener := range d.listeners {
				d.drop(listener)
			}
			return
		}
	}
}

func (d *Dispatcher) drop(l *Listener) {
	if _, ok := d.listeners[l]; ok {
		delete(d.listeners, l)
		close(l.ch)
	}
}
