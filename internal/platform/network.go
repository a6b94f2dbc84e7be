package platform

import (
	"context"
	"fmt"
	"net"
	"time"
)

// networkPollInterval is how often interfaces are checked while waiting.
const networkPollInterval = 500 * time.Millisecond

// Logger is the logging interface used by the platform package.
type Logger interface {
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

// Interface is the subset of net.Interface state the wait inspects.
type Interface struct {
	Name  string
	Flags net.Flags
	Addrs []net.Addr
}

// InterfaceLister lists the host's network interfaces.
type InterfaceLister func() ([]Interface, error)

// SystemInterfaces lists interfaces with their addresses via the net package.
func SystemInterfaces() ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	out := make([]Interface, 0, len(ifaces))
	for _, ifi := range ifaces {
		addrs, err := ifi.Addrs()
		if err != nil {
			continue
		}
		out = append(out, Interface{Name: ifi.Name, Flags: ifi.Flags, Addrs: addrs})
	}
	return out, nil
}

// NetworkWait blocks until an interface is associated.
type NetworkWait struct {
	// Interface is the device to wait for. Empty accepts any non-loopback interface.
	Interface string

	// Timeout bounds the wait. Zero waits until ctx is cancelled.
	Timeout time.Duration

	List   InterfaceLister
	Poll   time.Duration
	Logger Logger
}

// Wait returns the name of the first interface that is up with a unicast
// address, polling until one appears, the timeout passes or ctx is cancelled.
func (w NetworkWait) Wait(ctx context.Context) (string, error) {
	list := w.List
	if list == nil {
		list = SystemInterfaces
	}
	poll := w.Poll
	if poll <= 0 {
		poll = networkPollInterval
	}
	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		ifaces, err := list()
		if err == nil {
			if name, ok := associated(ifaces, w.Interface); ok {
				return name, nil
			}
		}
		if w.Logger != nil && attempt == 1 {
			w.Logger.Info("waiting for network", "interface", w.Interface)
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %w", ErrNetworkTimeout, ctx.Err())
		case <-ticker.C:
		}
	}
}

// associated reports the first matching interface that is up, not loopback
// and has a global unicast address.
func associated(ifaces []Interface, want string) (string, bool) {
	for _, ifi := range ifaces {
		if want != "" && ifi.Name != want {
			continue
		}
		if ifi.Flags&net.FlagUp == 0 || ifi.Flags&net.FlagLoopback != 0 {
			continue
		}
		for _, a := range ifi.Addrs {
			ipn, ok := a.(*net.IPNet)
			if ok && ipn.IP.IsGlobalUnicast() {
				return ifi.Name, true
			}
		}
	}
	return "", false
}
