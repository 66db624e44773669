// Package tlv implements the TCAT type-length-value record format.
//
// Every record on the TCAT channel is framed as
//
//	┌────────┬──────────────────┬───────────────┐
//	│ type 1B│ length 2B (BE)   │ value (length)│
//	└────────┴──────────────────┴───────────────┘
//
// Records are self-delimiting, so a buffer is simply a concatenation of
// zero or more records. Decode consumes exactly one record from the front
// of a buffer and returns the remainder; DecodeAll and Iterator walk a
// packed sequence such as the nested service-name records returned for
// GetApplicationLayers.
package tlv
