// Package mqtt provides MQTT client connectivity for the greenhouse node.
//
// This package manages:
//   - Single, caller-driven connection attempts with a bounded timeout
//   - Last Will and Testament (LWT) for offline detection
//   - Message publishing with QoS and a payload size limit
//   - Subscriptions whose messages are queued for the control loop
//
// # Architecture
//
// The node talks to one broker. A controller on the same network sends
// actuator commands and reads telemetry:
//
//	Greenhouse Node ↔ MQTT Broker ↔ Controller
//
// The control loop is single-threaded, so nothing here calls back into
// node code. paho delivers messages on its own goroutines; the client
// copies them into a bounded channel that the loop drains once per tick.
//
// # Usage
//
//	client := mqtt.New(cfg.MQTT)
//	defer client.Close()
//
//	if err := client.Connect(); err != nil {
//	    // try again on the next tick
//	}
//	client.Subscribe(cfg.MQTT.Topics.Commands, 1)
//
//	for {
//	    select {
//	    case msg := <-client.Inbound():
//	        handle(msg.Topic, msg.Payload)
//	    default:
//	    }
//	}
package mqtt
