// Package node runs the greenhouse control loop.
//
// A Node owns every stateful component: actuator levels, the broker link
// and its attempt counter, and the telemetry schedule. All of them are
// touched only from the loop goroutine, so none needs a lock.
//
// Each iteration services, in order:
//  1. Housekeeping
//  2. Broker link check and reconnect
//  3. Inbound messages (commands and peer status)
//  4. Telemetry, when the publish interval has elapsed
//
// Start must be called once before Run. It restores the persisted actuator
// levels to the outputs, initialises the sensors and waits for the network,
// so the outputs are correct before the first connection attempt.
package node
