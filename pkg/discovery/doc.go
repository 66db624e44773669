// Package discovery finds TCAT devices on the local network with mDNS/DNS-SD.
//
// Devices that accept TCAT commissioning over TCP advertise the _tcat._tcp
// service. Instance names are device chosen; TXT records are exposed as a
// key/value map without further interpretation.
//
// The device simulator uses Advertise to publish the same service, so a
// client and a simulated device can find each other on a development host.
package discovery
