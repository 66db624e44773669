// Package transport provides the secure stream between a TCAT commissioner
// and a TCAT device.
//
// The transport layer handles:
//   - TLS connections authenticated against a shared CA
//   - TLV record delimiting (3-byte header)
//   - Protocol capture of every record and connection state change
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│      TCAT commands             │
//	├────────────────────────────────┤
//	│   TLV records [T][L:2][V]      │
//	├────────────────────────────────┤
//	│         TLS                    │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// # Certificate Verification
//
// Both ends present a certificate. The peer chain is verified against the CA
// from the credentials directory; host names are not checked because devices
// are addressed by discovered IP.
//
// # Request/Response
//
// The commissioner sends one TLV record and reads exactly one record back.
// A device that closes the stream instead of answering (as after DISCONNECT)
// yields an empty response.
package transport
