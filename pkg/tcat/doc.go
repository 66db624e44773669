// Package tcat defines the TCAT protocol constants shared by the client and
// the device simulator: TLV type codes, response status codes and the names
// of Thread network diagnostic TLVs that can be requested over TCAT.
package tcat
