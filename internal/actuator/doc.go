// Package actuator drives the node's three PWM outputs.
//
// Each channel (circulation fan, grow light, exhaust fan) has an 8-bit
// level. A level change is written to the hardware first and then to the
// persistent store; the in-memory level only moves once the store write
// has succeeded, so Level always reports what a restart would restore.
//
// If the hardware write succeeds but the store write fails, the output
// runs at the new level while the stored and reported level stay at the
// old one. SetLevel reports the failure and nothing retries it; the next
// successful command on that channel closes the gap.
//
// Usage:
//
//	ctrl := actuator.NewController(adaptor, store, actuator.Pins{
//	    Circulation: "11", Light: "13", Exhaust: "15",
//	})
//	if _, err := ctrl.LoadPersisted(ctx); err != nil {
//	    logger.Warn("restoring actuator levels", "error", err)
//	}
//	err := ctrl.SetLevel(ctx, actuator.Light, 200)
package actuator
