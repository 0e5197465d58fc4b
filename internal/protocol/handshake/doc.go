// Package handshake runs the two-message key exchange that opens a chat
// session.
//
// # Flow
//
// Initiator:
//  1. Fetch the responder's published (g, n).
//  2. Generate a random letter secret and a dh.SequenceLocksmith.
//  3. Send a hello carrying (g, n) and the contribution string.
//  4. On the responder's reply, derive the session key.
//
// Responder:
//  1. Check the hello's (g, n) against its own published parameters.
//  2. Generate a secret of the same length as the initiator's contribution.
//  3. Derive the session key and reply with its own contribution.
//
// # Errors
//
// ErrParamsMismatch is returned when the peer used other parameters.
// dh.ErrInvalidParameter is returned when (g, n) fails primitive-root
// validation, which stops the exchange before any secret is generated.
package handshake
