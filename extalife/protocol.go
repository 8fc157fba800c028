package extalife

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	defaultResponseTimeout = 500 * time.Millisecond
	defaultResponseRetries = 5
	responseBuffer         = 32
)

// MQTTClient is the subset of the MQTT client the relay needs.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte) error) error
}

type ProtocolConfig struct {
	TopicPrefix     string
	QoS             byte
	ResponseTimeout time.Duration
	Retries         int
}

// Protocol relays channel actions to the Exta Life gateway bridge over MQTT
// and feeds its status pushes back into the core. Actions are sent one at a
// time, each waiting for its response before the next goes out.
type Protocol struct {
	ctx    context.Context
	client MQTTClient
	cfg    ProtocolConfig

	responseCh chan responseMessage
	actionCh   chan *request
	nextID     atomic.Uint64

	onNotification func(channelID string, n StateNotification)
	mu             sync.RWMutex
}

type commandMessage struct {
	ID      string `json:"id"`
	Channel string `json:"channel"`
	Action  string `json:"action"`
	State   int    `json:"state"`
	Value   int    `json:"value"`
}

type responseMessage struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}

type request struct {
	ctx     context.Context
	id      string
	payload []byte
	ch      chan bool
}

func NewProtocol(ctx context.Context, client MQTTClient, cfg ProtocolConfig) (*Protocol, error) {
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "extalife"
	}
	if cfg.ResponseTimeout <= 0 {
		cfg.ResponseTimeout = defaultResponseTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = defaultResponseRetries
	}

	p := &Protocol{
		ctx:        ctx,
		client:     client,
		cfg:        cfg,
		responseCh: make(chan responseMessage, responseBuffer),
		actionCh:   make(chan *request),
	}

	if err := client.Subscribe(p.responseTopic(), cfg.QoS, p.handleResponse); err != nil {
		return nil, fmt.Errorf("subscribe to responses: %w", err)
	}
	if err := client.Subscribe(p.notificationTopic("+"), cfg.QoS, p.handleNotification); err != nil {
		return nil, fmt.Errorf("subscribe to notifications: %w", err)
	}

	go p.broker()
	return p, nil
}

func (p *Protocol) commandTopic() string  { return p.cfg.TopicPrefix + "/command" }
func (p *Protocol) responseTopic() string { return p.cfg.TopicPrefix + "/response" }

func (p *Protocol) notificationTopic(channelID string) string {
	return p.cfg.TopicPrefix + "/notification/" + channelID
}

// SetOnNotification sets the receiver of controller status pushes.
func (p *Protocol) SetOnNotification(fn func(channelID string, n StateNotification)) {
	p.mu.Lock()
	p.onNotification = fn
	p.mu.Unlock()
}

func (p *Protocol) SendAction(ctx context.Context, channelID string, action Action, value int) bool {
	state, ok := action.GatewayState()
	if !ok {
		return false
	}

	id := strconv.FormatUint(p.nextID.Add(1), 10)
	payload, err := json.Marshal(commandMessage{
		ID:      id,
		Channel: channelID,
		Action:  action.String(),
		State:   state,
		Value:   value,
	})
	if err != nil {
		log.Errorf("error encoding action: %s", err)
		return false
	}

	req := &request{ctx: ctx, id: id, payload: payload, ch: make(chan bool, 1)}

	// Send action to action handling goroutine
	select {
	case p.actionCh <- req:
	case <-ctx.Done():
		return false
	case <-p.ctx.Done():
		return false
	}

	// Wait for response
	select {
	case ok := <-req.ch:
		return ok
	case <-ctx.Done():
		return false
	}
}

func (p *Protocol) broker() {
	for {
		select {
		case req := <-p.actionCh:
			req.ch <- p.performAction(req)
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Protocol) performAction(req *request) bool {
	if req.ctx.Err() != nil {
		return false
	}

	log.Infof("sending action: %s", req.payload)
	p.publish(req.payload)

	ticker := time.NewTicker(p.cfg.ResponseTimeout)
	defer ticker.Stop()

	for tries := 0; ; {
		select {
		case res := <-p.responseCh:
			if res.ID != req.id {
				log.Debugf("got response for another action, is: %s expected: %s", res.ID, req.id)
				continue
			}
			return res.Success
		case <-ticker.C:
			if tries >= p.cfg.Retries {
				log.Warnf("action %s timed out", req.id)
				return false
			}
			log.Debug("timeout waiting for response, retransmitting action")
			p.publish(req.payload)
			tries++
		case <-req.ctx.Done():
			return false
		case <-p.ctx.Done():
			return false
		}
	}
}

func (p *Protocol) publish(payload []byte) bool {
	if err := p.client.Publish(p.commandTopic(), payload, p.cfg.QoS, false); err != nil {
		log.Errorf("error publishing action: %s", err)
		return false
	}
	return true
}

func (p *Protocol) handleResponse(_ string, payload []byte) error {
	var res responseMessage
	if err := json.Unmarshal(payload, &res); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	select {
	case p.responseCh <- res:
	default:
		log.Warnf("response %s dropped, no action is waiting", res.ID)
	}
	return nil
}

func (p *Protocol) handleNotification(topic string, payload []byte) error {
	channelID := strings.TrimPrefix(topic, p.notificationTopic(""))
	if channelID == "" || channelID == topic {
		return fmt.Errorf("notification on unexpected topic %q", topic)
	}

	var n StateNotification
	if err := json.Unmarshal(payload, &n); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}

	p.mu.RLock()
	fn := p.onNotification
	p.mu.RUnlock()

	if fn != nil {
		fn(channelID, n)
	}
	return nil
}
