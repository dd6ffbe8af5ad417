// Package envelope defines the conversational message unit exchanged with
// the transport, plus identity extraction and submission payload decoding.
package envelope
