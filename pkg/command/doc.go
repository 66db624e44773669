// Package command implements the TCAT client operations.
//
// Every operation satisfies Command: it has a help string and an Execute
// entry point that receives the user arguments and the session. Operations
// that talk to the device are TransportCommand values tagged by Kind; their
// lifecycle is fixed:
//
//	not connected        -> report, NoResult
//	prepare(kind, args)  -> request bytes (+ expected digest), or a
//	                        precondition failure that aborts before sending
//	SendWithResponse     -> bounded by Options.RequestTimeout
//	tlv.Decode           -> response record
//	process(kind, resp)  -> kind specific reporting and session updates
//	                     -> TLVResult
//
// No command returns an error to the dispatcher. Failures are reported on
// the session output and end with NoResult.
package command
