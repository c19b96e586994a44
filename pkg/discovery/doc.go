// Package discovery locates instruments on the local network and on USB.
//
// Data servers announce themselves via mDNS; Browse aggregates their
// announcements across interfaces into DataServerService entries.
// Advertise publishes the same service type, used by simulated servers
// so the rest of the tooling finds them like real hardware. FindUSB
// enumerates directly attached instruments by their USB vendor/product
// identifiers.
package discovery
