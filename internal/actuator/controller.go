package actuator

import (
	"context"
	"errors"
	"fmt"
)

// maxLevel is the largest PWM level.
const maxLevel = 255

// Controller owns the three actuator levels.
//
// Controller is not safe for concurrent use; it belongs to the control loop.
type Controller struct {
	out    Output
	store  Store
	pins   Pins
	levels Levels
	logger Logger
}

// NewController creates a controller with all levels at 0.
// Call LoadPersisted before the first command.
func NewController(out Output, store Store, pins Pins) *Controller {
	return &Controller{
		out:    out,
		store:  store,
		pins:   pins,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the controller.
func (c *Controller) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	c.logger = logger
}

// SetLevel drives ch to v and persists it.
//
// Both writes must succeed for the level to change. On ErrOutputFailed
// nothing was persisted. On ErrPersistFailed the hardware already runs at
// v but Level still reports the previous value.
func (c *Controller) SetLevel(ctx context.Context, ch Channel, v uint8) error {
	if !ch.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownChannel, ch)
	}

	if err := c.out.PwmWrite(c.pins.pin(ch), v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutputFailed, ch, err)
	}

	if err := c.store.PutInt(ctx, ch.Key(), int(v)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPersistFailed, ch, err)
	}

	prev := c.levels.Get(ch)
	c.levels.set(ch, v)
	c.logger.Debug("actuator level set", "channel", ch.String(), "from", prev, "to", v)
	return nil
}

// Level returns the current level of ch.
func (c *Controller) Level(ch Channel) uint8 {
	return c.levels.Get(ch)
}

// Levels returns a snapshot of all levels.
func (c *Controller) Levels() Levels {
	return c.levels
}

// LoadPersisted restores every channel from the store and applies it to
// the hardware.
//
// A missing entry restores 0. A stored value outside 0..255 is clamped.
// Failures are collected and returned together, and every channel is still
// applied. A channel that could not be read is driven to 0 and 0 is written
// back, so the store again holds what the output runs at.
func (c *Controller) LoadPersisted(ctx context.Context) (Levels, error) {
	var errs []error

	for _, ch := range Channels {
		v, ok, readErr := c.store.GetInt(ctx, ch.Key())
		if readErr != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrLoadFailed, ch, readErr))
			v = 0
		}
		if !ok {
			v = 0
		}
		level := clamp(v)

		if err := c.out.PwmWrite(c.pins.pin(ch), level); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrOutputFailed, ch, err))
		}
		c.levels.set(ch, level)

		if readErr != nil {
			if err := c.store.PutInt(ctx, ch.Key(), int(level)); err != nil {
				errs = append(errs, fmt.Errorf("%w: %s: %w", ErrPersistFailed, ch, err))
			}
		}
	}

	c.logger.Info("actuator levels restored",
		"circulation", c.levels.Circulation,
		"light", c.levels.Light,
		"exhaust", c.levels.Exhaust,
	)

	return c.levels, errors.Join(errs...)
}

func clamp(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > maxLevel:
		return maxLevel
	default:
		return uint8(v)
	}
}
