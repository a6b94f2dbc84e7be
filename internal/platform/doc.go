// Package platform reports on the host network link.
//
// The node needs two things from the operating system: a way to hold
// startup until the network interface is associated, and the Wi-Fi signal
// level reported in telemetry. Both are read from Linux interfaces
// (net.Interfaces and /proc/net/wireless) and work on any host, returning
// zero values where there is no wireless device.
package platform
