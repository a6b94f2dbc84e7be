// Package command turns inbound command messages into actuator levels.
//
// A command is a JSON object with any of the fields circulation_fan_pwm,
// grow_light_pwm and exhaust_fan_pwm. Values are truncated to integers
// and clamped to 0..255. Unknown fields, and fields whose value is not a
// number, are ignored. An empty object changes nothing.
//
// Commands are fire-and-forget: there is no reply, and a rejected command
// is only logged.
package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/nerrad567/greenhouse-node/internal/actuator"
)

// Command field names.
const (
	FieldCirculation = "circulation_fan_pwm"
	FieldLight       = "grow_light_pwm"
	FieldExhaust     = "exhaust_fan_pwm"
)

// fields lists the recognised fields in the order they are applied.
var fields = []struct {
	name string
	ch   actuator.Channel
}{
	{FieldCirculation, actuator.Circulation},
	{FieldLight, actuator.Light},
	{FieldExhaust, actuator.Exhaust},
}

// Actuators is the part of the actuator controller commands drive.
type Actuators interface {
	SetLevel(ctx context.Context, ch actuator.Channel, v uint8) error
}

// Logger defines the logging interface for the handler.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Applied records which levels a command set.
// A nil field was absent, not numeric, or failed to apply.
type Applied struct {
	Circulation *uint8
	Light       *uint8
	Exhaust     *uint8
}

// Empty reports whether nothing was applied.
func (a Applied) Empty() bool {
	return a.Circulation == nil && a.Light == nil && a.Exhaust == nil
}

func (a *Applied) set(ch actuator.Channel, v uint8) {
	switch ch {
	case actuator.Circulation:
		a.Circulation = &v
	case actuator.Light:
		a.Light = &v
	case actuator.Exhaust:
		a.Exhaust = &v
	}
}

// Handler validates commands and applies them.
type Handler struct {
	act    Actuators
	logger Logger
}

// NewHandler creates a handler driving act.
func NewHandler(act Actuators) *Handler {
	return &Handler{act: act, logger: noopLogger{}}
}

// SetLogger sets the logger for the handler.
func (h *Handler) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	h.logger = logger
}

// Handle parses raw and applies every recognised field.
//
// It returns ErrMalformed, with nothing applied, when raw is not a JSON
// object. Otherwise each field is applied independently; failures are
// joined as ErrApplyFailed and the returned Applied lists what succeeded.
func (h *Handler) Handle(ctx context.Context, raw []byte) (Applied, error) {
	var applied Applied

	doc, err := parse(raw)
	if err != nil {
		h.logger.Warn("command dropped", "error", err, "bytes", len(raw))
		return applied, err
	}

	var errs []error
	for _, f := range fields {
		value, present := doc[f.name]
		if !present {
			continue
		}
		level, ok := parseLevel(value)
		if !ok {
			h.logger.Debug("command field skipped", "field", f.name, "value", string(value))
			continue
		}

		if err := h.act.SetLevel(ctx, f.ch, level); err != nil {
			h.logger.Warn("command field not applied", "field", f.name, "level", level, "error", err)
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrApplyFailed, f.name, err))
			continue
		}
		applied.set(f.ch, level)
	}

	if !applied.Empty() {
		h.logger.Info("command applied", appliedAttrs(applied)...)
	}
	return applied, errors.Join(errs...)
}

// parse decodes raw as a JSON object without interpreting its values.
func parse(raw []byte) (map[string]json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	// A bare null decodes into a nil map without error.
	if doc == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformed)
	}
	return doc, nil
}

// parseLevel converts a JSON value to a level. It reports false for
// anything that is not a number.
func parseLevel(raw json.RawMessage) (uint8, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}

	// Out-of-range magnitudes come back as ±Inf and clamp like any other.
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return clampLevel(f), true
}

// clampLevel truncates f toward zero and clamps it to 0..255.
func clampLevel(f float64) uint8 {
	f = math.Trunc(f)
	switch {
	case f <= 0:
		return 0
	case f >= 255:
		return 255
	default:
		return uint8(f)
	}
}

func appliedAttrs(a Applied) []any {
	var attrs []any
	if a.Circulation != nil {
		attrs = append(attrs, FieldCirculation, *a.Circulation)
	}
	if a.Light != nil {
		attrs = append(attrs, FieldLight, *a.Light)
	}
	if a.Exhaust != nil {
		attrs = append(attrs, FieldExhaust, *a.Exhaust)
	}
	return attrs
}
