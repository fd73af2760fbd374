// Package domain holds the verifier's core model: the identifiers that correlate
// one presentation exchange, the variants that describe what is being requested and
// how the wallet should answer, and the Presentation state machine itself.
//
// Every Presentation stage is an immutable value. Transitions return a new stage
// value (or a *domain.Error with CodeState) and never modify the receiver, so
// persisting a presentation always means overwriting the keyed record with the
// value returned by the last transition.
//
//	Requested -> RequestObjectRetrieved -> Submitted
//	    \               |                    /
//	     `-------------> TimedOut <---------'
//
// Nothing in this package performs I/O.
package domain
