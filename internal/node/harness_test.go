package node

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/greenhouse-node/internal/actuator"
	"github.com/nerrad567/greenhouse-node/internal/command"
	"github.com/nerrad567/greenhouse-node/internal/infrastructure/mqtt"
	"github.com/nerrad567/greenhouse-node/internal/link"
	"github.com/nerrad567/greenhouse-node/internal/sensor"
	"github.com/nerrad567/greenhouse-node/internal/telemetry"
)

const (
	sensorTopic  = "greenhouse/sensors"
	commandTopic = "greenhouse/commands"
	statusTopic  = "greenhouse/esp32/status"
	peerTopic    = "greenhouse/jetson/status"
)

var testPins = actuator.Pins{Circulation: "11", Light: "13", Exhaust: "15"}

// events is an ordered log shared by the fakes.
type events []string

func (e *events) add(format string, args ...any) {
	*e = append(*e, fmt.Sprintf(format, args...))
}

// index returns the position of the first event with the given text, or -1.
func (e events) index(s string) int {
	for i, ev := range e {
		if ev == s {
			return i
		}
	}
	return -1
}

type recordingOutput struct {
	log *events
	err error
}

func (o *recordingOutput) PwmWrite(pin string, level byte) error {
	if o.err != nil {
		return o.err
	}
	o.log.add("pwm %s=%d", pin, level)
	return nil
}

type memStore struct {
	values map[string]int
	log    *events
}

func (s *memStore) GetInt(_ context.Context, key string) (int, bool, error) {
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memStore) PutInt(_ context.Context, key string, value int) error {
	s.values[key] = value
	s.log.add("put %s=%d", key, value)
	return nil
}

// fakeBroker is the transport, telemetry sender and inbox at once.
type fakeBroker struct {
	log        *events
	connectErr error
	connected  bool
	inbound    chan mqtt.Message
	payloads   map[string][][]byte
}

func (b *fakeBroker) Connect() error {
	b.log.add("connect")
	if b.connectErr != nil {
		return b.connectErr
	}
	b.connected = true
	return nil
}

func (b *fakeBroker) IsConnected() bool { return b.connected }

func (b *fakeBroker) Publish(topic string, payload []byte, _ byte, retained bool) error {
	if !b.connected {
		return mqtt.ErrNotConnected
	}
	b.log.add("publish %s retained=%v", topic, retained)
	b.payloads[topic] = append(b.payloads[topic], payload)
	return nil
}

func (b *fakeBroker) Subscribe(topic string, _ byte) error {
	b.log.add("subscribe %s", topic)
	return nil
}

func (b *fakeBroker) Disconnect() { b.connected = false }

func (b *fakeBroker) Inbound() <-chan mqtt.Message { return b.inbound }

func (b *fakeBroker) deliver(topic, payload string) {
	b.inbound <- mqtt.Message{Topic: topic, Payload: []byte(payload)}
}

type climateSensor struct {
	initErr error
}

func (s climateSensor) Kind() sensor.Kind { return sensor.KindClimate }
func (s climateSensor) Init() error       { return s.initErr }
func (s climateSensor) TryRead() (sensor.Measurement, error) {
	return sensor.Climate{TempC: 25, RH: 60}, nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type harness struct {
	node   *Node
	log    *events
	store  *memStore
	broker *fakeBroker
	act    *actuator.Controller
	link   *link.Manager
	clock  *fakeClock
	peer   *PeerStatus
}

// newHarness wires a Node from real components over in-memory fakes.
func newHarness(stored map[string]int) *harness {
	log := &events{}
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	if stored == nil {
		stored = map[string]int{}
	}
	store := &memStore{values: stored, log: log}
	broker := &fakeBroker{log: log, inbound: make(chan mqtt.Message, 16), payloads: map[string][][]byte{}}

	act := actuator.NewController(&recordingOutput{log: log}, store, testPins)
	sensors := sensor.New(climateSensor{})
	mgr := link.NewManager(broker, link.Config{
		StatusTopic:     statusTopic,
		CommandTopic:    commandTopic,
		PeerStatusTopic: peerTopic,
		QoS:             1,
		OnlinePayload:   []byte(mqtt.StatusOnline),
	})
	pub := telemetry.NewPublisher(telemetry.Options{
		Topic:           sensorTopic,
		FirmwareVersion: "test",
		Sensors:         sensors,
		Actuators:       act,
		Link:            mgr,
		Sender:          broker,
		Now:             clock.Now,
	})
	peer := NewPeerStatus(nil)

	n := New(Options{
		Actuators:       act,
		Sensors:         sensors,
		Link:            mgr,
		Commands:        command.NewHandler(act),
		Telemetry:       pub,
		Inbox:           broker,
		Peer:            peer,
		CommandTopic:    commandTopic,
		PeerStatusTopic: peerTopic,
		Now:             clock.Now,
	})

	return &harness{
		node:   n,
		log:    log,
		store:  store,
		broker: broker,
		act:    act,
		link:   mgr,
		clock:  clock,
		peer:   peer,
	}
}

// stepFor advances the clock one tick at a time, stepping after each.
func (h *harness) stepFor(ctx context.Context, d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += DefaultTickInterval {
		h.clock.now = h.clock.now.Add(DefaultTickInterval)
		h.node.Step(ctx)
	}
}

var errRefused = errors.New("connection refused")
