package link

import (
	"errors"
	"testing"
)

// mockTransport scripts connection outcomes and records traffic.
type mockTransport struct {
	connected    bool
	connectErrs  []error // popped per Connect; nil entry means success
	publishErr   error
	subscribeErr error

	connects    int
	disconnects int
	published   []published
	subscribed  []string
}

type published struct {
	topic    string
	payload  string
	qos      byte
	retained bool
}

func (m *mockTransport) Connect() error {
	m.connects++
	var err error
	if len(m.connectErrs) > 0 {
		err = m.connectErrs[0]
		m.connectErrs = m.connectErrs[1:]
	}
	m.connected = err == nil
	return err
}

func (m *mockTransport) IsConnected() bool { return m.connected }

func (m *mockTransport) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, published{topic, string(payload), qos, retained})
	return nil
}

func (m *mockTransport) Subscribe(topic string, _ byte) error {
	if m.subscribeErr != nil {
		return m.subscribeErr
	}
	m.subscribed = append(m.subscribed, topic)
	return nil
}

func (m *mockTransport) Disconnect() {
	m.disconnects++
	m.connected = false
}

func testConfig() Config {
	return Config{
		StatusTopic:     "greenhouse/esp32/status",
		CommandTopic:    "greenhouse/commands",
		PeerStatusTopic: "greenhouse/jetson/status",
		QoS:             1,
		OnlinePayload:   []byte(`{"status":"online"}`),
	}
}

var errRefused = errors.New("connection refused")

func TestEnsure_ConnectsAndAnnounces(t *testing.T) {
	tr := &mockTransport{}
	m := NewManager(tr, testConfig())

	if m.State() != StateDisconnected {
		t.Fatalf("initial State() = %s, want disconnected", m.State())
	}

	if got := m.Ensure(); got != StateConnected {
		t.Fatalf("Ensure() = %s, want connected", got)
	}
	if m.Attempts() != 1 {
		t.Errorf("Attempts() = %d, want 1", m.Attempts())
	}

	if len(tr.published) != 1 {
		t.Fatalf("published = %+v, want one online status", tr.published)
	}
	p := tr.published[0]
	if p.topic != "greenhouse/esp32/status" || p.payload != `{"status":"online"}` || !p.retained {
		t.Errorf("online status = %+v, want retained on own status topic", p)
	}

	want := []string{"greenhouse/commands", "greenhouse/jetson/status"}
	if len(tr.subscribed) != 2 || tr.subscribed[0] != want[0] || tr.subscribed[1] != want[1] {
		t.Errorf("subscribed = %v, want %v", tr.subscribed, want)
	}
}

func TestEnsure_StaysConnected(t *testing.T) {
	tr := &mockTransport{}
	m := NewManager(tr, testConfig())
	m.Ensure()

	for i := 0; i < 5; i++ {
		if got := m.Ensure(); got != StateConnected {
			t.Fatalf("Ensure() = %s, want connected", got)
		}
	}
	if tr.connects != 1 || m.Attempts() != 1 {
		t.Errorf("connects = %d, attempts = %d, want 1/1", tr.connects, m.Attempts())
	}
	if len(tr.published) != 1 {
		t.Errorf("online status published %d times, want once", len(tr.published))
	}
}

func TestEnsure_RetriesEveryTickWithoutBackoff(t *testing.T) {
	tr := &mockTransport{connectErrs: []error{errRefused, errRefused, errRefused, nil}}
	m := NewManager(tr, testConfig())

	wantStates := []State{StateDisconnected, StateDisconnected, StateDisconnected, StateConnected}
	for i, want := range wantStates {
		if got := m.Ensure(); got != want {
			t.Errorf("tick %d: Ensure() = %s, want %s", i+1, got, want)
		}
		if m.Attempts() != uint64(i+1) {
			t.Errorf("tick %d: Attempts() = %d, want %d", i+1, m.Attempts(), i+1)
		}
	}
}

func TestEnsure_LinkLostReconnects(t *testing.T) {
	tr := &mockTransport{}
	m := NewManager(tr, testConfig())
	m.Ensure()

	tr.connected = false // broker went away
	tr.connectErrs = []error{errRefused}

	if got := m.Ensure(); got != StateDisconnected {
		t.Fatalf("Ensure() after loss = %s, want disconnected", got)
	}
	if m.Attempts() != 2 {
		t.Errorf("Attempts() = %d, want 2", m.Attempts())
	}

	if got := m.Ensure(); got != StateConnected {
		t.Fatalf("Ensure() = %s, want connected", got)
	}

	// A fresh session re-announces and re-subscribes.
	if len(tr.published) != 2 || len(tr.subscribed) != 4 {
		t.Errorf("published %d, subscribed %d, want 2 and 4", len(tr.published), len(tr.subscribed))
	}
}

func TestEnsure_SetupFailureDropsLink(t *testing.T) {
	tests := []struct {
		name  string
		setup func(tr *mockTransport)
	}{
		{"online status rejected", func(tr *mockTransport) { tr.publishErr = errors.New("not authorized") }},
		{"subscribe rejected", func(tr *mockTransport) { tr.subscribeErr = errors.New("not authorized") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &mockTransport{}
			tt.setup(tr)
			m := NewManager(tr, testConfig())

			if got := m.Ensure(); got != StateDisconnected {
				t.Errorf("Ensure() = %s, want disconnected", got)
			}
			if tr.disconnects != 1 || tr.connected {
				t.Errorf("disconnects = %d, connected = %v, want dropped link", tr.disconnects, tr.connected)
			}
		})
	}
}

func TestAttempts_Monotonic(t *testing.T) {
	outcomes := []error{nil, errRefused, nil, errRefused, errRefused, nil}
	tr := &mockTransport{connectErrs: outcomes}
	m := NewManager(tr, testConfig())

	var last uint64
	for i := 0; i < 20; i++ {
		if i%3 == 0 {
			tr.connected = false
		}
		m.Ensure()
		if m.Attempts() < last {
			t.Fatalf("Attempts() decreased from %d to %d", last, m.Attempts())
		}
		last = m.Attempts()
	}
	if int(last) != tr.connects {
		t.Errorf("Attempts() = %d, transport saw %d connects", last, tr.connects)
	}
}

func TestEnsure_NoPeerTopic(t *testing.T) {
	cfg := testConfig()
	cfg.PeerStatusTopic = ""
	tr := &mockTransport{}
	m := NewManager(tr, cfg)

	m.Ensure()
	if len(tr.subscribed) != 1 || tr.subscribed[0] != "greenhouse/commands" {
		t.Errorf("subscribed = %v, want only the command topic", tr.subscribed)
	}
}

// lateTransport completes a timed-out connect in the background and then
// refuses further Connect calls, as paho does without auto-reconnect.
type lateTransport struct {
	mockTransport
}

func (l *lateTransport) Connect() error {
	l.connects++
	if l.connected {
		return errors.New("already connected or reconnecting")
	}
	l.connected = true
	return errors.New("connect timeout")
}

func TestEnsure_AdoptsLateConnection(t *testing.T) {
	tr := &lateTransport{}
	m := NewManager(tr, testConfig())

	if got := m.Ensure(); got != StateDisconnected {
		t.Fatalf("first Ensure() = %s, want disconnected", got)
	}
	if !tr.IsConnected() {
		t.Fatal("transport should report the late connection")
	}

	if got := m.Ensure(); got != StateConnected {
		t.Fatalf("second Ensure() = %s, want connected", got)
	}
	if tr.connects != 1 {
		t.Errorf("connects = %d, want 1 (no Connect on a live session)", tr.connects)
	}
	if m.Attempts() != 2 {
		t.Errorf("Attempts() = %d, want 2", m.Attempts())
	}
	if len(tr.published) != 1 || !tr.published[0].retained {
		t.Errorf("published = %+v, want retained online status", tr.published)
	}
	if len(tr.subscribed) != 2 {
		t.Errorf("subscribed = %v, want command and peer topics", tr.subscribed)
	}

	for i := 0; i < 10; i++ {
		m.Ensure()
	}
	if m.Attempts() != 2 || m.State() != StateConnected {
		t.Errorf("after 10 ticks: attempts = %d, state = %s, want 2/connected", m.Attempts(), m.State())
	}
}
