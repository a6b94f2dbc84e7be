// Package link keeps the node's broker connection alive.
//
// The Manager is a three-state machine driven by the control loop:
//
//	Disconnected --Ensure--> Connecting --ok--> Connected --lost--> Disconnected
//	                              \--fail--> Disconnected
//
// Every tick that finds the link down makes exactly one attempt and counts
// it, successful or not. There is no backoff and no cap; the transport's
// connect timeout bounds each attempt.
//
// After each successful connect the manager publishes a retained online
// status and subscribes to the command and peer status topics. The
// matching offline status is the transport's last will.
package link
