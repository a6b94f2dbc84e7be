package node

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/greenhouse-node/internal/actuator"
	"github.com/nerrad567/greenhouse-node/internal/command"
	"github.com/nerrad567/greenhouse-node/internal/infrastructure/mqtt"
	"github.com/nerrad567/greenhouse-node/internal/link"
	"github.com/nerrad567/greenhouse-node/internal/telemetry"
)

func TestNode_RestoresLevelsBeforeFirstPublish(t *testing.T) {
	ctx := context.Background()
	h := newHarness(map[string]int{"circ": 120, "light": 200})

	if err := h.node.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	h.stepFor(ctx, DefaultTelemetryInterval)

	restored := h.log.index("pwm 13=200")
	connected := h.log.index("connect")
	published := h.log.index("publish " + sensorTopic + " retained=false")

	if restored < 0 || published < 0 {
		t.Fatalf("events = %v, want light restore and telemetry", *h.log)
	}
	if restored > connected || restored > published {
		t.Errorf("light restored at event %d, after connect (%d) or publish (%d)", restored, connected, published)
	}

	var p telemetry.Payload
	if err := json.Unmarshal(h.broker.payloads[sensorTopic][0], &p); err != nil {
		t.Fatalf("telemetry is not JSON: %v", err)
	}
	if p.GrowLightPWM != 200 || p.CirculationFanPWM != 120 || p.ExhaustFanPWM != 0 {
		t.Errorf("levels = %d/%d/%d, want 120/200/0", p.CirculationFanPWM, p.GrowLightPWM, p.ExhaustFanPWM)
	}
	if !p.SHT4OK || p.InsideTempF == nil {
		t.Error("climate reading missing from telemetry")
	}
}

func TestNode_ConnectSequence(t *testing.T) {
	ctx := context.Background()
	h := newHarness(nil)
	if err := h.node.Start(ctx); err != nil {
		t.Fatal(err)
	}

	h.node.Step(ctx)

	if h.link.State() != link.StateConnected {
		t.Fatalf("state = %s, want connected", h.link.State())
	}
	online := h.log.index("publish " + statusTopic + " retained=true")
	subCmd := h.log.index("subscribe " + commandTopic)
	subPeer := h.log.index("subscribe " + peerTopic)
	if online < 0 || subCmd < 0 || subPeer < 0 {
		t.Fatalf("events = %v, want online status and both subscriptions", *h.log)
	}
	if got := string(h.broker.payloads[statusTopic][0]); got != mqtt.StatusOnline {
		t.Errorf("status payload = %s, want %s", got, mqtt.StatusOnline)
	}
}

func TestNode_CommandClampedAndPersisted(t *testing.T) {
	ctx := context.Background()
	h := newHarness(nil)
	if err := h.node.Start(ctx); err != nil {
		t.Fatal(err)
	}
	h.node.Step(ctx)

	h.broker.deliver(commandTopic, `{"grow_light_pwm":300}`)
	h.node.Step(ctx)

	if got := h.act.Level(actuator.Light); got != 255 {
		t.Errorf("Level(Light) = %d, want 255", got)
	}
	if got := h.store.values["light"]; got != 255 {
		t.Errorf("persisted light = %d, want 255", got)
	}
	if h.log.index("pwm 13=255") < 0 {
		t.Errorf("events = %v, want pwm 13=255", *h.log)
	}
}

func TestNode_MalformedCommandLeavesLevels(t *testing.T) {
	ctx := context.Background()
	h := newHarness(map[string]int{"circ": 10, "light": 20, "exh": 30})
	if err := h.node.Start(ctx); err != nil {
		t.Fatal(err)
	}
	h.node.Step(ctx)
	before := len(*h.log)

	for _, raw := range []string{`not json`, `[1,2,3]`, `{"grow_light_pwm":`} {
		h.broker.deliver(commandTopic, raw)
	}
	h.node.Step(ctx)

	want := actuator.Levels{Circulation: 10, Light: 20, Exhaust: 30}
	if got := h.act.Levels(); got != want {
		t.Errorf("Levels() = %+v, want %+v", got, want)
	}
	for _, ev := range (*h.log)[before:] {
		if ev != "connect" {
			t.Errorf("unexpected event after malformed commands: %s", ev)
		}
	}
}

func TestNode_PeerStatusRouted(t *testing.T) {
	ctx := context.Background()
	h := newHarness(nil)
	if err := h.node.Start(ctx); err != nil {
		t.Fatal(err)
	}

	h.broker.deliver(peerTopic, `{"status":"online"}`)
	h.broker.deliver("greenhouse/other", `{"grow_light_pwm":1}`)
	h.node.Step(ctx)

	if got := h.peer.status; got != "online" {
		t.Errorf("peer status = %q, want online", got)
	}
	if got := h.act.Level(actuator.Light); got != 0 {
		t.Errorf("message on unknown topic changed light to %d", got)
	}
}

func TestNode_TelemetryEveryInterval(t *testing.T) {
	ctx := context.Background()
	h := newHarness(nil)
	if err := h.node.Start(ctx); err != nil {
		t.Fatal(err)
	}

	h.stepFor(ctx, 4*time.Second)
	if n := len(h.broker.payloads[sensorTopic]); n != 0 {
		t.Fatalf("published %d payloads before the first interval", n)
	}

	h.stepFor(ctx, 11*time.Second)
	if n := len(h.broker.payloads[sensorTopic]); n != 3 {
		t.Errorf("published %d payloads in 15s, want 3", n)
	}
}

func TestNode_KeepsRunningWhileBrokerDown(t *testing.T) {
	ctx := context.Background()
	h := newHarness(nil)
	h.broker.connectErr = errRefused
	if err := h.node.Start(ctx); err != nil {
		t.Fatal(err)
	}

	h.stepFor(ctx, DefaultTelemetryInterval)

	if got := h.link.Attempts(); got != 250 {
		t.Errorf("Attempts() = %d, want 250 (one per tick)", got)
	}
	if n := len(h.broker.payloads[sensorTopic]); n != 0 {
		t.Errorf("published %d payloads while disconnected", n)
	}

	// The broker comes back; the next tick connects and commands flow again.
	h.broker.connectErr = nil
	h.broker.deliver(commandTopic, `{"exhaust_fan_pwm":42}`)
	h.node.Step(ctx)

	if h.link.State() != link.StateConnected {
		t.Errorf("state = %s, want connected", h.link.State())
	}
	if got := h.act.Level(actuator.Exhaust); got != 42 {
		t.Errorf("Level(Exhaust) = %d, want 42", got)
	}
}

// orderRecorder records the order in which Step calls its collaborators.
type orderRecorder struct {
	calls []string
	inbox chan mqtt.Message
}

func (o *orderRecorder) Housekeep(context.Context) { o.calls = append(o.calls, "housekeep") }
func (o *orderRecorder) Ensure() link.State {
	o.calls = append(o.calls, "ensure")
	return link.StateConnected
}
func (o *orderRecorder) Handle(context.Context, []byte) (command.Applied, error) {
	o.calls = append(o.calls, "command")
	return command.Applied{}, nil
}
func (o *orderRecorder) Publish() error {
	o.calls = append(o.calls, "publish")
	return nil
}
func (o *orderRecorder) Inbound() <-chan mqtt.Message { return o.inbox }
func (o *orderRecorder) LoadPersisted(context.Context) (actuator.Levels, error) {
	o.calls = append(o.calls, "load")
	return actuator.Levels{}, nil
}
func (o *orderRecorder) Levels() actuator.Levels { return actuator.Levels{} }
func (o *orderRecorder) Init() int {
	o.calls = append(o.calls, "init")
	return 0
}
func (o *orderRecorder) Wait(context.Context) (string, error) {
	o.calls = append(o.calls, "wait")
	return "wlan0", nil
}

func TestNode_StepOrder(t *testing.T) {
	ctx := context.Background()
	rec := &orderRecorder{inbox: make(chan mqtt.Message, 1)}
	clock := &fakeClock{now: time.Unix(0, 0)}

	n := New(Options{
		Actuators:         rec,
		Sensors:           rec,
		Link:              rec,
		Commands:          rec,
		Telemetry:         rec,
		Inbox:             rec,
		Network:           rec,
		Housekeeping:      rec,
		CommandTopic:      commandTopic,
		TelemetryInterval: time.Second,
		Now:               clock.Now,
	})
	if err := n.Start(ctx); err != nil {
		t.Fatal(err)
	}

	rec.inbox <- mqtt.Message{Topic: commandTopic, Payload: []byte(`{}`)}
	clock.now = clock.now.Add(time.Second)
	n.Step(ctx)

	want := []string{"load", "init", "wait", "housekeep", "ensure", "command", "publish"}
	if len(rec.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", rec.calls, want)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Errorf("call %d = %s, want %s (all: %v)", i, rec.calls[i], want[i], rec.calls)
		}
	}
}

type failingWait struct{}

func (failingWait) Wait(context.Context) (string, error) {
	return "", context.DeadlineExceeded
}

func TestNode_StartNetworkFailure(t *testing.T) {
	rec := &orderRecorder{inbox: make(chan mqtt.Message)}
	n := New(Options{
		Actuators: rec,
		Sensors:   rec,
		Link:      rec,
		Commands:  rec,
		Telemetry: rec,
		Inbox:     rec,
		Network:   failingWait{},
	})

	err := n.Start(context.Background())
	if !errors.Is(err, ErrNetworkUnavailable) {
		t.Fatalf("Start() error = %v, want ErrNetworkUnavailable", err)
	}
	if err := n.Run(context.Background()); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Run() error = %v, want ErrNotStarted", err)
	}
}

func TestNode_RunStopsOnCancel(t *testing.T) {
	h := newHarness(nil)
	ctx, cancel := context.WithCancel(context.Background())
	if err := h.node.Start(ctx); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- h.node.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
